package models

import (
	"context"
	"errors"
)

// ErrNotFound is returned by lookups when no matching record exists.
var ErrNotFound = errors.New("record not found")

// TokenRepository is the durable store of issued token-pair records. Every
// mutation runs in its own transaction; ReplaceForUser is the atomic
// deactivate-all-then-insert unit the issuer relies on.
type TokenRepository interface {
	Create(ctx context.Context, record *TokenRecord) error
	GetActiveByAccessValue(ctx context.Context, accessValue string) (*TokenRecord, error)
	GetActiveByUserEmail(ctx context.Context, userEmail string) (*TokenRecord, error)
	// GetByRefreshValue looks the record up regardless of status; rotation
	// logic does its own state checks.
	GetByRefreshValue(ctx context.Context, refreshValue string) (*TokenRecord, error)
	// DeactivateAllByUserEmail tombstones every record for the user and
	// returns the access values it touched, so the caller can push them to
	// the revocation blacklist.
	DeactivateAllByUserEmail(ctx context.Context, userEmail string) ([]string, error)
	// ReplaceForUser performs DeactivateAllByUserEmail and Create as a single
	// transaction.
	ReplaceForUser(ctx context.Context, record *TokenRecord) ([]string, error)
	Deactivate(ctx context.Context, tokenID int64) error
	// PurgeRetired deletes every record with deactivated AND expired set and
	// returns the number of sessions removed.
	PurgeRetired(ctx context.Context) (int64, error)
	RunMigrations(migrationsPath string) error
	Close() error
}
