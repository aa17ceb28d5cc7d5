// Package identity is the key/value storage the authentication collaborator
// writes the current user into: "auth-token" and "user-data" per session.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jainjy/servo-sub017/internal/domain"
)

// KV is a session-scoped string store.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Backend hands out the KV of one browser session.
type Backend interface {
	Session(sessionID string) KV
}

// Store reads and writes the stored identity of one session.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store { return &Store{kv: kv} }

func ForSession(b Backend, sessionID string) *Store { return NewStore(b.Session(sessionID)) }

// Load returns the stored identity. A missing token yields an
// unauthenticated identity, not an error.
func (s *Store) Load(ctx context.Context) (domain.StoredIdentity, error) {
	var id domain.StoredIdentity
	token, ok, err := s.kv.Get(ctx, domain.KeyAuthToken)
	if err != nil {
		return id, fmt.Errorf("read %s: %w", domain.KeyAuthToken, err)
	}
	if ok {
		id.Token = strings.TrimSpace(token)
	}
	raw, ok, err := s.kv.Get(ctx, domain.KeyUserData)
	if err != nil {
		return id, fmt.Errorf("read %s: %w", domain.KeyUserData, err)
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &id); err != nil {
			return id, fmt.Errorf("decode %s: %w", domain.KeyUserData, err)
		}
	}
	return id, nil
}

// SaveProfile rewrites "user-data". The token is left untouched.
func (s *Store) SaveProfile(ctx context.Context, id domain.StoredIdentity) error {
	b, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, domain.KeyUserData, string(b))
}

// SignIn stores a token together with its profile.
func (s *Store) SignIn(ctx context.Context, id domain.StoredIdentity) error {
	if err := s.kv.Set(ctx, domain.KeyAuthToken, id.Token); err != nil {
		return err
	}
	return s.SaveProfile(ctx, id)
}

func (s *Store) SignOut(ctx context.Context) error {
	return s.kv.Delete(ctx, domain.KeyAuthToken, domain.KeyUserData)
}
