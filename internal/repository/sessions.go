package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gofinance/internal/core"
	"gofinance/internal/kv"
)

var ErrNoSession = errors.New("no active session")

// SessionRepository stores the signed-in profile, one record per user.
type SessionRepository struct {
	store     kv.Store
	namespace string
}

func NewSessionRepository(store kv.Store, namespace string) *SessionRepository {
	if strings.TrimSpace(namespace) == "" {
		namespace = DefaultNamespace
	}
	return &SessionRepository{store: store, namespace: namespace}
}

func (r *SessionRepository) Save(ctx context.Context, u core.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := r.store.Set(ctx, UserKey(r.namespace, u.ID), raw); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Get returns ErrNoSession when the user has not signed in.
func (r *SessionRepository) Get(ctx context.Context, userID string) (core.User, error) {
	if userID == "" {
		return core.User{}, ErrNoSession
	}
	raw, err := r.store.Get(ctx, UserKey(r.namespace, userID))
	if errors.Is(err, kv.ErrNotFound) {
		return core.User{}, ErrNoSession
	}
	if err != nil {
		return core.User{}, fmt.Errorf("load user: %w", err)
	}
	var u core.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return core.User{}, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

// Delete removes only the profile. The transaction collection is kept so the
// user finds it again on the next sign-in.
func (r *SessionRepository) Delete(ctx context.Context, userID string) error {
	if err := r.store.Delete(ctx, UserKey(r.namespace, userID)); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
