package cache

import (
	"context"
	"fmt"
	"time"

	"sessiond/internal/logger"
)

type tokenBlacklist struct {
	cache  Cache
	logger logger.Logger
}

// NewTokenBlacklist creates a blacklist backed by the given cache.
func NewTokenBlacklist(cache Cache, l logger.Logger) Blacklist {
	return &tokenBlacklist{
		cache:  cache,
		logger: l,
	}
}

// Revoke blacklists an access token until its own expiry. Tokens already past
// expiry are not stored: the codec rejects them anyway.
func (b *tokenBlacklist) Revoke(ctx context.Context, accessValue string, expiresAt time.Time) error {
	key := RevokedTokenPrefix + accessValue
	ttl := time.Until(expiresAt)

	if ttl <= 0 {
		b.logger.Debug("Token already expired, not adding to blacklist")
		return nil
	}

	if err := b.cache.Set(ctx, key, "revoked", ttl); err != nil {
		b.logger.Error("Failed to blacklist token", logger.Error(err))
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	b.logger.Info("Access token blacklisted", logger.Duration("ttl", ttl))
	return nil
}

// IsRevoked checks whether the access token has been blacklisted.
func (b *tokenBlacklist) IsRevoked(ctx context.Context, accessValue string) (bool, error) {
	exists, err := b.cache.Exists(ctx, RevokedTokenPrefix+accessValue)
	if err != nil {
		b.logger.Error("Failed to check token blacklist status", logger.Error(err))
		return false, fmt.Errorf("failed to check token blacklist status: %w", err)
	}

	return exists, nil
}
