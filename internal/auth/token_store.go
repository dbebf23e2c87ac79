package auth

import (
	"context"
	"fmt"

	"enquiry-admin-console/internal/cache"

	"github.com/google/uuid"
)

// TokenKey is the cache key a session's backend token is kept under.
const TokenKey = "auth_token"

// TokenStore keeps one backend token per console session.
type TokenStore struct {
	cache cache.Store
}

func NewTokenStore(c cache.Store) *TokenStore {
	return &TokenStore{cache: c}
}

// Create starts a new session holding token and returns its id.
func (s *TokenStore) Create(ctx context.Context, token string) (string, error) {
	sessionID := uuid.NewString()
	if err := s.Save(ctx, sessionID, token); err != nil {
		return "", err
	}
	return sessionID, nil
}

func (s *TokenStore) Save(ctx context.Context, sessionID, token string) error {
	if err := s.scope(sessionID).Put(ctx, TokenKey, []byte(token)); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}
	return nil
}

// Load returns the session's token, or "" when there is none.
func (s *TokenStore) Load(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	raw, ok, err := s.scope(sessionID).Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("load session token: %w", err)
	}
	if !ok {
		return "", nil
	}
	return string(raw), nil
}

func (s *TokenStore) Remove(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.scope(sessionID).Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("remove session token: %w", err)
	}
	return nil
}

func (s *TokenStore) scope(sessionID string) cache.Store {
	return cache.Namespace(s.cache, "session/"+sessionID)
}
