package token

import (
	"encoding/base64"
	"fmt"
)

// minKeyBytes is the minimum HMAC-SHA256 key size (256 bits).
const minKeyBytes = 32

// LoadSigningKey base64-decodes the configured signing secret and verifies it
// carries enough material for HMAC-SHA256. It is meant to run once at startup:
// a short or undecodable secret must abort the process there, not surface on a
// request path. The returned key is immutable and safe for concurrent reads.
func LoadSigningKey(secretBase64 string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(secretBase64)
	if err != nil {
		return nil, fmt.Errorf("signing secret is not valid base64: %w", err)
	}

	if len(key) < minKeyBytes {
		return nil, fmt.Errorf("signing secret decodes to %d bytes, need at least %d", len(key), minKeyBytes)
	}

	return key, nil
}
