// Patra - Multi-Tenant Record Service
//
// This is the main entry point for the patrad daemon. Patra exposes a
// JSON REST API for principal accounts, their records, and the audit
// trail, backed by a single SQLite database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/patra-io/patra/migrations"

	"github.com/patra-io/patra/internal/api"
	"github.com/patra-io/patra/internal/audit"
	"github.com/patra-io/patra/internal/auth"
	"github.com/patra-io/patra/internal/infrastructure/config"
	"github.com/patra-io/patra/internal/infrastructure/database"
	"github.com/patra-io/patra/internal/infrastructure/logging"
	"github.com/patra-io/patra/internal/record"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting patra",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	principals := auth.NewPrincipalRepository(db.DB)
	records := record.NewRepository(db.DB)
	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Auth services
	tokens, err := auth.NewTokenService(cfg.Security.JWT.Secret, cfg.Security.JWT.Algorithm, cfg.TokenTTL())
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	gate := auth.NewGate(tokens, principals)
	authn := auth.NewAuthenticator(principals)

	// First-boot admin account
	if _, seedErr := auth.SeedAdmin(ctx, principals, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin account: %w", seedErr)
	}

	// API server
	server, err := api.New(api.Deps{
		Config:        cfg.API,
		Security:      cfg.Security,
		Logger:        log,
		Principals:    principals,
		Records:       records,
		Audit:         auditRepo,
		Tokens:        tokens,
		Gate:          gate,
		Authenticator: authn,
		Version:       version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify infrastructure is healthy
	if err := healthCheck(ctx, db, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (drains the audit writer)
	// 2. Database

	log.Info("patra stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses PATRA_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PATRA_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, server *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	return nil
}
