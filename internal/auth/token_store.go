package auth

import (
	"context"
	"time"

	"eventease/internal/cache"
)

const revokedSessionKeyPrefix = "revoked:session:"

// TokenStoreInterface tracks revoked session tokens.
type TokenStoreInterface interface {
	RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore keeps revoked session token ids in Redis until they would have expired.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// RevokeSession marks tokenID revoked for ttl.
func (s *TokenStore) RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.SetStrict(ctx, revokedSessionKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsSessionRevoked reports whether tokenID was revoked. Redis being
// unreachable reads as not revoked.
func (s *TokenStore) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, revokedSessionKeyPrefix+tokenID)
	if err != nil {
		return false, nil
	}
	return data != nil, nil
}
