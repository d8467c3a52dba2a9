package security

import (
	"crypto/rand"
	"encoding/hex"
)

// tokenSize is the number of random bytes in an opaque token,
// 256 bits of entropy encoded as 64 hex characters
const tokenSize = 32

// GenerateToken mints an unguessable opaque token for verification
// and password reset links
func GenerateToken() (string, error) {
	b := make([]byte, tokenSize)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
