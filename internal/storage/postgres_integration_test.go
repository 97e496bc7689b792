//go:build integration

package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"gofinance/internal/kv"
)

func TestPostgresStoreIntegration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewPostgresStore(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()

	key := "@gofinance-test:" + uuid.NewString()
	defer s.Delete(context.Background(), key)

	if _, err := s.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, key, []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, key, []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := s.Get(ctx, key)
	if err != nil || string(got) != `[{"id":"1"}]` {
		t.Fatalf("unexpected value %q %v", got, err)
	}
}
