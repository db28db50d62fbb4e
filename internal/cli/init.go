// Package cli holds the process setup steps of cmd/dashboard.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bookings/internal/amqp"
	"bookings/internal/config"
	"bookings/internal/journal"
	applog "bookings/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the root logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(cfg *config.Config) *applog.Logger {
	lc := applog.DefaultConfig()
	lc.Level = applog.ParseLevel(cfg.LogLevel)
	lc.Format = cfg.LogFormat
	logger := applog.New(lc)
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration, sets up logging and validates.
// It exits the process on validation failure.
func LoadAndValidateConfig() (*config.Config, *applog.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// InitJournal opens the activity journal at dbPath. An empty path disables
// it and returns nil. It exits the process when the database cannot be
// opened.
func InitJournal(logger *applog.Logger, dbPath string) *journal.Journal {
	if dbPath == "" {
		logger.Info("Activity journal disabled")
		return nil
	}
	j, err := journal.Open(dbPath, logger)
	if err != nil {
		logger.Error("Failed to initialize activity journal", applog.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	logger.Info("Activity journal ready", "path", dbPath)
	return j
}

// InitAMQP connects the event publisher. Publishing is optional, so a
// failed connection is logged and nil returned.
func InitAMQP(ctx context.Context, logger *applog.Logger, url, exchange string) *amqp.Client {
	if url == "" {
		return nil
	}
	client, err := amqp.NewClient(ctx, url, exchange, logger)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
		return nil
	}
	logger.Info("Initialized AMQP client", "exchange", exchange)
	return client
}

// ShutdownContext returns a context cancelled by SIGINT or SIGTERM.
func ShutdownContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
	}()
	return ctx, stop
}
