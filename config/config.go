package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"relay-control-backend/internal/device"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Relay    RelayConfig    `yaml:"relay"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port                   int     `yaml:"port"`
	RateLimitPerSec        float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst         int     `yaml:"rate_limit_burst"`
	ReadTimeoutSeconds     int     `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int     `yaml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int     `yaml:"shutdown_timeout_seconds"`

	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
	ShutdownTimeout time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // sqlite or postgres
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogSQL                 bool   `yaml:"log_sql"`
}

// RelayConfig describes the relay board wiring.
type RelayConfig struct {
	// Enabled selects the Raspberry Pi GPIO backend. When false relay writes
	// go to an in-memory board.
	Enabled         bool        `yaml:"enabled"`
	ActiveLow       *bool       `yaml:"active_low"`
	ActuateOnToggle *bool       `yaml:"actuate_on_toggle"`
	Pins            map[int]int `yaml:"pins"` // relay port -> BCM pin
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultPins is the wiring of the stock four-channel relay HAT.
func DefaultPins() map[int]int {
	return map[int]int{
		1: 17,
		2: 27,
		3: 22,
		4: 23,
	}
}

// IsActiveLow reports whether the relay board energises on a low line.
func (r RelayConfig) IsActiveLow() bool {
	return r.ActiveLow == nil || *r.ActiveLow
}

// ShouldActuateOnToggle reports whether toggles drive the relay.
func (r RelayConfig) ShouldActuateOnToggle() bool {
	return r.ActuateOnToggle == nil || *r.ActuateOnToggle
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	return finish(&cfg)
}

// Default returns the configuration used when no config file is present:
// environment overrides on top of the defaults.
func Default() (*Config, error) {
	return finish(&Config{})
}

func finish(cfg *Config) (*Config, error) {
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 10
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 10
	}
	if cfg.Server.ShutdownTimeoutSeconds <= 0 {
		cfg.Server.ShutdownTimeoutSeconds = 5
	}
	cfg.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	cfg.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	cfg.Server.ShutdownTimeout = time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == DriverSQLite {
		cfg.Database.DSN = "devices.db"
	}
	if cfg.Database.MaxOpenConns <= 0 && cfg.Database.Driver == DriverSQLite {
		// SQLite allows one writer; a single connection serialises writes.
		log.Printf("database.max_open_conns is not set; defaulting to 1 for sqlite")
		cfg.Database.MaxOpenConns = 1
	}

	if len(cfg.Relay.Pins) == 0 {
		cfg.Relay.Pins = DefaultPins()
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("RELAYD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RELAYD_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("RELAYD_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("RELAYD_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("RELAYD_RELAY_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid RELAYD_RELAY_ENABLED %q: %w", v, err)
		}
		cfg.Relay.Enabled = enabled
	}
	return nil
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver)
	}

	seen := make(map[int]int, len(c.Relay.Pins))
	for port, pin := range c.Relay.Pins {
		if err := device.ValidateRelayPort(port); err != nil {
			return fmt.Errorf("relay.pins: %w", err)
		}
		if pin < 0 {
			return fmt.Errorf("relay.pins: port %d has negative pin %d", port, pin)
		}
		if other, dup := seen[pin]; dup {
			return fmt.Errorf("relay.pins: pin %d is wired to both port %d and port %d", pin, other, port)
		}
		seen[pin] = port
	}
	return nil
}
