package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"relay-control-backend/config"
	"relay-control-backend/internal/api"
	"relay-control-backend/internal/db"
	"relay-control-backend/internal/relay"
	"relay-control-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "relayd ", log.LstdFlags)

	if err := run(logger); err != nil {
		logger.Printf("relayd exited: %v", err)
		os.Exit(1)
	}
}

// run serves until a stop signal or a server failure. Deferred teardown has
// completed by the time it returns.
func run(logger *log.Logger) error {
	if err := godotenv.Load(); err != nil {
		logger.Println("no .env file found, using process environment")
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Printf("no configuration at %s, using defaults and environment", configPath)
		cfg, err = config.Default()
		if err != nil {
			return fmt.Errorf("failed to build default configuration: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	} else {
		logger.Printf("configuration loaded successfully from %s", configPath)
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	}()
	logger.Printf("database initialized successfully (%s)", cfg.Database.Driver)

	// Acquire the relay board; every wired port starts inactive.
	var board relay.Board
	if cfg.Relay.Enabled {
		board = relay.NewRPIOBoard()
	} else {
		logger.Println("relay.enabled is false, using simulated relay board")
		board = relay.NewSimulatedBoard(true)
	}
	controller, err := relay.NewController(board, cfg.Relay.Pins, cfg.Relay.IsActiveLow())
	if err != nil {
		return fmt.Errorf("failed to initialize relay controller: %w", err)
	}
	defer func() {
		if err := controller.Close(); err != nil {
			logger.Printf("relay teardown: %v", err)
		}
	}()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Initialize router
	router := api.NewRouter(appStore, controller, api.RouterOptions{
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		ActuateOnToggle: cfg.Relay.ShouldActuateOnToggle(),
	})
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start the server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-stop:
		logger.Println("Shutdown signal received, stopping services...")
	case err := <-serverErr:
		runErr = fmt.Errorf("HTTP server ListenAndServe: %w", err)
	}

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server Shutdown: %v", err)
	}

	if runErr == nil {
		logger.Println("Server gracefully stopped")
	}
	return runErr
}
