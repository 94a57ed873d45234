package cache

import (
	"context"
	"time"
)

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
	Ping(ctx context.Context) error
}

// Blacklist is the fast revocation path for access tokens. Entries live only
// until the token's own expiry; the token store stays authoritative.
type Blacklist interface {
	Revoke(ctx context.Context, accessValue string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, accessValue string) (bool, error)
}
