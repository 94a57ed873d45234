package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sessiond/internal/cache"
	"sessiond/internal/config"
	"sessiond/internal/logger"
	"sessiond/internal/repository/models"
	"sessiond/internal/token"

	"github.com/google/uuid"
)

// User is what the external user directory knows about an identity.
type User struct {
	Subject     string
	DisplayName string
}

// UserDirectory resolves an identity to its display attributes. Implementations
// return ErrUserNotFound when the identity is unknown.
type UserDirectory interface {
	Resolve(ctx context.Context, identity string) (*User, error)
}

// TokenPair bundles a short-lived signed access token and a long-lived opaque
// refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service owns the session lifecycle: issuing token pairs, validating access
// tokens, rotating refresh tokens, and signing sessions out. Safe for
// concurrent use; the store is the only shared mutable state.
type Service struct {
	repo      models.TokenRepository
	codec     *token.Codec
	directory UserDirectory
	blacklist cache.Blacklist // nil disables the revocation fast path
	l         logger.Logger

	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewService wires the session service. blacklist may be nil.
func NewService(repo models.TokenRepository, codec *token.Codec, directory UserDirectory, blacklist cache.Blacklist, cfg config.TokenConfig, l logger.Logger) *Service {
	return &Service{
		repo:       repo,
		codec:      codec,
		directory:  directory,
		blacklist:  blacklist,
		l:          l,
		accessTTL:  cfg.AccessTokenTTL.Std(),
		refreshTTL: cfg.RefreshTokenTTL.Std(),
		now:        time.Now,
	}
}

// Issue creates a new token pair for the identity, displacing any session the
// user already holds. Displacement and insertion commit as one transaction, so
// at most one record per user is active at any committed point. Racing calls
// for the same user are last-writer-wins, not an error.
func (s *Service) Issue(ctx context.Context, identity string) (*TokenPair, error) {
	user, err := s.directory.Resolve(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve user %s: %w", identity, err)
	}

	issuedAt := s.now()
	accessValue, err := s.codec.Encode(user.Subject, user.DisplayName, issuedAt, issuedAt.Add(s.accessTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to encode access token: %w", err)
	}

	record := &models.TokenRecord{
		AccessValue: accessValue,
		UserEmail:   identity,
		Refresh: &models.RefreshRecord{
			Value:     uuid.NewString(),
			CreatedAt: issuedAt,
			ExpiresAt: issuedAt.Add(s.refreshTTL),
		},
	}

	displaced, err := s.repo.ReplaceForUser(ctx, record)
	if err != nil {
		return nil, s.storeErr(err)
	}

	s.revokeDisplaced(ctx, displaced)

	s.l.Info("Session issued", logger.String("user_email", identity))
	return &TokenPair{AccessToken: accessValue, RefreshToken: record.Refresh.Value}, nil
}

// Validate verifies an access token cryptographically and then against the
// store, so tokens whose backing record was displaced or signed out fail even
// before their embedded expiry.
func (s *Service) Validate(ctx context.Context, accessValue string) (*token.Claims, error) {
	claims, err := s.codec.Decode(accessValue)
	if err != nil {
		return nil, err
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsRevoked(ctx, accessValue)
		if err != nil {
			// blacklist is a fast path only; fall through to the store
			s.l.Warn("Blacklist check failed", logger.Error(err))
		} else if revoked {
			return nil, ErrNoActiveSession
		}
	}

	if _, err := s.repo.GetActiveByAccessValue(ctx, accessValue); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, s.storeErr(err)
	}

	return claims, nil
}

// Rotate exchanges a valid refresh token for a brand-new pair. The old pair is
// displaced by the same path fresh issuance uses; its value fields are never
// mutated in place.
func (s *Service) Rotate(ctx context.Context, refreshValue string) (*TokenPair, error) {
	record, err := s.repo.GetByRefreshValue(ctx, refreshValue)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, s.storeErr(err)
	}

	if record.Refresh.ExpirationStatus || !s.now().Before(record.Refresh.ExpiresAt) {
		return nil, ErrRefreshTokenExpired
	}

	// Issue resolves the owner and displaces the record just validated.
	pair, err := s.Issue(ctx, record.UserEmail)
	if err != nil {
		return nil, err
	}

	s.l.Info("Session rotated", logger.String("user_email", record.UserEmail))
	return pair, nil
}

// SignOut revokes the caller's active session. A second call with no session
// left fails with ErrNoActiveSession so callers can tell "already signed out"
// from "signed out".
func (s *Service) SignOut(ctx context.Context, identity string) error {
	record, err := s.repo.GetActiveByUserEmail(ctx, identity)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrNoActiveSession
		}
		return s.storeErr(err)
	}

	if err := s.repo.Deactivate(ctx, record.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrNoActiveSession
		}
		return s.storeErr(err)
	}

	s.revokeDisplaced(ctx, []string{record.AccessValue})

	s.l.Info("Session signed out", logger.String("user_email", identity))
	return nil
}

// revokeDisplaced blacklists displaced access tokens best-effort. Failures are
// logged only: the store already holds the authoritative tombstones.
func (s *Service) revokeDisplaced(ctx context.Context, accessValues []string) {
	if s.blacklist == nil {
		return
	}

	// now+accessTTL is an upper bound on any displaced token's remaining life
	horizon := s.now().Add(s.accessTTL)
	for _, v := range accessValues {
		if err := s.blacklist.Revoke(ctx, v, horizon); err != nil {
			s.l.Warn("Failed to blacklist displaced token", logger.Error(err))
		}
	}
}

func (s *Service) storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
