package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID returns a random 128-bit identifier rendered as 32 hex characters.
func NewID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// RandomString returns length random bytes encoded as unpadded base64url.
func RandomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
