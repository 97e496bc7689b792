package backend

import (
	"context"

	"gofinance/internal/kv"
)

// CleanupFunc releases the resources behind a store.
type CleanupFunc func() error

// Result is a ready store plus its cleanup.
type Result struct {
	Store   kv.Store
	Cleanup CleanupFunc
}

// Factory creates stores based on configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// Config holds what any backend needs to open its store.
type Config struct {
	Type BackendType

	// SQLite
	SQLiteDBPath string

	// Postgres
	DatabaseURL string

	// Memory: seed.json in this directory is loaded when present.
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
