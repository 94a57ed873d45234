package service

import "errors"

var (
	// ErrUserNotFound means the user directory has no entry for the identity.
	ErrUserNotFound = errors.New("user not found")
	// ErrRefreshTokenNotFound means the presented refresh value matches no record.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	// ErrRefreshTokenExpired means the refresh token exists but is invalidated
	// or past its window.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrNoActiveSession means the caller has no active session record. On the
	// validate path it also covers revoked and superseded access tokens.
	ErrNoActiveSession = errors.New("no active session")
	// ErrStoreUnavailable is a transient infrastructure failure. Callers should
	// surface it as a retryable 5xx, never as an authentication verdict.
	ErrStoreUnavailable = errors.New("token store unavailable")
)
