package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T, fill byte) []byte {
	t.Helper()

	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = fill
	}
	key, err := LoadSigningKey(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	return key
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec(testKey(t, 0x01))

	issuedAt := time.Now()
	expiresAt := issuedAt.Add(15 * time.Minute)

	tokenString, err := codec.Encode("a@x.io", "Alice", issuedAt, expiresAt)
	require.NoError(t, err)
	assert.Len(t, strings.Split(tokenString, "."), 3)

	claims, err := codec.Decode(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", claims.Subject)
	assert.Equal(t, "Alice", claims.DisplayName)
	assert.True(t, time.Now().Before(claims.ExpiresAt.Time))
}

func TestCodec_DecodeErrors(t *testing.T) {
	key := testKey(t, 0x01)
	issuedAt := time.Now()
	valid, err := NewCodec(key).Encode("a@x.io", "Alice", issuedAt, issuedAt.Add(time.Minute))
	require.NoError(t, err)

	tests := []struct {
		name        string
		codec       *Codec
		tokenString string
		wantErr     error
	}{
		{
			name:        "not a token at all",
			codec:       NewCodec(key),
			tokenString: "definitely not a jwt",
			wantErr:     ErrTokenMalformed,
		},
		{
			name:        "wrong segment count",
			codec:       NewCodec(key),
			tokenString: "aaaa.bbbb",
			wantErr:     ErrTokenMalformed,
		},
		{
			name:        "signed with a different key",
			codec:       NewCodec(testKey(t, 0x02)),
			tokenString: valid,
			wantErr:     ErrInvalidSignature,
		},
		{
			name: "past embedded expiry",
			codec: NewCodecWithClock(key, func() time.Time {
				return issuedAt.Add(61 * time.Second)
			}),
			tokenString: valid,
			wantErr:     ErrTokenExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := tt.codec.Decode(tt.tokenString)

			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCodec_TamperedPayload(t *testing.T) {
	codec := NewCodec(testKey(t, 0x01))

	issuedAt := time.Now()
	tokenString, err := codec.Encode("a@x.io", "Alice", issuedAt, issuedAt.Add(time.Minute))
	require.NoError(t, err)

	// swap the payload segment for a foreign one, keeping the signature
	parts := strings.Split(tokenString, ".")
	require.Len(t, parts, 3)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"b@x.io"}`))

	_, err = codec.Decode(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_Projections(t *testing.T) {
	codec := NewCodec(testKey(t, 0x01))

	issuedAt := time.Now().Truncate(time.Second)
	expiresAt := issuedAt.Add(time.Hour)
	tokenString, err := codec.Encode("a@x.io", "Alice", issuedAt, expiresAt)
	require.NoError(t, err)

	subject, err := codec.Subject(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", subject)

	exp, err := codec.ExpiresAt(tokenString)
	require.NoError(t, err)
	assert.True(t, exp.Equal(expiresAt))

	_, err = codec.Subject("garbage")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
