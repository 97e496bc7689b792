// Package kv defines the key-value port the repositories persist through.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("kv: key not found")

// Store persists opaque values by string key. Values are read and written whole.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op when the key is absent.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Pinger is implemented by stores backed by a network or file connection.
type Pinger interface {
	Ping(ctx context.Context) error
}
