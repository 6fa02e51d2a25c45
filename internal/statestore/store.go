package statestore

import (
	"context"
	"fmt"

	"rowsweep/internal/config"
)

// Well-known state keys. Each holds one JSON-serialized singleton owned by a
// single writer.
const (
	KeyDeletionQueue = "deletion_queue"
	KeyCleanupState  = "cleanup_state"
	KeyRecentEdits   = "recent_edits"
)

// Store is a persistent key-value store for the subsystem's singleton
// structures. Values are opaque strings; callers handle serialization.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Put inserts or replaces the value under key.
	Put(ctx context.Context, key, value string) error
	// Delete removes the key; absent keys are not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the state store selected by configuration.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case "postgres":
		return OpenPostgres(cfg.Store.PostgresDSN)
	case "sqlite", "":
		return OpenSQLite(cfg.StateDBPath())
	default:
		return nil, fmt.Errorf("unsupported state backend %q", cfg.Store.Backend)
	}
}
