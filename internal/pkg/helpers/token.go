package helpers

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomToken returns a URL-safe random token built from n random bytes.
// Used for group identifiers and confirmation codes so they cannot be enumerated.
func RandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
