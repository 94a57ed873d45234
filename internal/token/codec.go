package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenMalformed means the input is not structurally a token this
	// service could have issued.
	ErrTokenMalformed = errors.New("token is malformed")
	// ErrInvalidSignature means the token parsed but its signature does not
	// verify against the current signing key.
	ErrInvalidSignature = errors.New("token signature is invalid")
	// ErrTokenExpired means the token is cryptographically valid but past its
	// embedded expiry.
	ErrTokenExpired = errors.New("token has expired")
)

// Claims is the decoded payload of an access token.
type Claims struct {
	jwt.RegisteredClaims
	DisplayName string `json:"name"`
}

// Codec signs and verifies compact HS256 access tokens. The zero value is not
// usable; construct with NewCodec. A Codec is immutable and safe for
// concurrent use.
type Codec struct {
	key []byte
	now func() time.Time
}

// NewCodec builds a codec around the given signing key. The key must already
// have passed LoadSigningKey.
func NewCodec(key []byte) *Codec {
	return &Codec{key: key, now: time.Now}
}

// NewCodecWithClock is NewCodec with an injectable clock, used by expiry tests.
func NewCodecWithClock(key []byte, now func() time.Time) *Codec {
	return &Codec{key: key, now: now}
}

// Encode produces a signed compact token embedding the subject and display
// name, with iat/exp set from the provided timestamps. The jti nonce keeps
// token strings unique even when two are minted within the same second.
func (c *Codec) Encode(subject, displayName string, issuedAt, expiresAt time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		DisplayName: displayName,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Decode verifies the token string and returns its claims. Failures map to
// exactly one of ErrTokenMalformed, ErrInvalidSignature, or ErrTokenExpired so
// callers can distinguish "not ours" from "ours but stale".
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)

	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenMalformed
		}
	}

	if !tok.Valid {
		return nil, ErrInvalidSignature
	}

	return claims, nil
}

// Subject returns the subject claim of a valid token.
func (c *Codec) Subject(tokenString string) (string, error) {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExpiresAt returns the expiry of a valid token.
func (c *Codec) ExpiresAt(tokenString string) (time.Time, error) {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}
