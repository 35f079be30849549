// Package cli consolidates the startup plumbing shared by cmd/vibeledger
// and cmd/vibeledger-worker: .env loading, logging, configuration and
// signal handling.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"vibeledger/internal/config"
	"vibeledger/internal/log"
)

// Setup loads the optional .env file, installs the default logger and
// returns a validated configuration. Exits the process when the
// configuration is unusable.
func Setup(component string) (*config.Config, *log.Logger) {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(component)
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration invalid", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
