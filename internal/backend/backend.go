// Package backend selects and assembles the persistence layer.
package backend

import (
	"fmt"

	"vibeledger/internal/auth"
	"vibeledger/internal/config"
	"vibeledger/internal/ledger"
	"vibeledger/internal/log"
	"vibeledger/internal/storage"
)

// Store is the combined persistence surface the application needs: the
// ledger side for transactions and the auth side for accounts.
type Store interface {
	ledger.Store
	auth.UserStore
	Close() error
}

// Both stores must satisfy the combined surface.
var (
	_ Store = (*storage.SQLiteStore)(nil)
	_ Store = (*storage.MemoryStore)(nil)
)

// Open builds the store named by the configuration. The returned cleanup
// function closes it and is safe to call once at shutdown.
func Open(cfg *config.Config, logger *log.Logger) (Store, func(), error) {
	switch cfg.DataBackend {
	case config.BackendSQLite:
		store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info("sqlite store ready", "db_path", cfg.SQLiteDBPath)
		return store, func() { store.Close() }, nil

	case config.BackendMemory:
		store := storage.NewMemoryStore()
		logger.Info("in-memory store ready")
		return store, func() { store.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported data backend: %q", cfg.DataBackend)
	}
}
