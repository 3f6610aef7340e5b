package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"relay-control-backend/config"
	"relay-control-backend/internal/model"
)

// Init initializes the database connection and creates the schema.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if cfg.LogSQL {
		logLevel = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := Migrate(db, cfg.Driver); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return sqlite.Open(cfg.DSN), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// sqliteSchema uses AUTOINCREMENT so identifiers of deleted rows are never
// handed out again. GORM's own SQLite DDL reuses the highest rowid.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS devices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		relay_port INTEGER NOT NULL
	)`,
}

// Migrate creates the devices table if it is absent. It is safe to run on
// every start.
func Migrate(db *gorm.DB, driver string) error {
	log.Println("Running database migrations...")
	if driver == config.DriverSQLite || driver == "" {
		for _, ddl := range sqliteSchema {
			if err := db.Exec(ddl).Error; err != nil {
				return fmt.Errorf("DDL failed on %q: %w", ddl, err)
			}
		}
		return nil
	}

	// Postgres bigserial sequences never hand out a value twice.
	if err := db.AutoMigrate(&model.Device{}); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}
