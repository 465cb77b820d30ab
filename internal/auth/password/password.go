// Package password generates temporary credentials for directory-created
// accounts.
package password

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateTemp returns a random url-safe password. Callers surface it to
// the admin exactly once.
func GenerateTemp() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
