package users

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// MaxPasswordLength is the largest accepted raw password in bytes.
	MaxPasswordLength = 512
	// Iterations is the PBKDF2-HMAC-SHA256 work factor.
	Iterations = 500000

	saltLength = 32
	keyLength  = 32
)

// Password is a salted PBKDF2 hash. Both fields are hex encoded.
type Password struct {
	Hashed string `json:"hashed"`
	Salt   string `json:"salt"`
}

// NewPassword derives a hash for password with a fresh random salt.
// Passwords longer than MaxPasswordLength are rejected, not truncated.
func NewPassword(password string) (Password, error) {
	if len(password) > MaxPasswordLength {
		return Password{}, apperrors.ErrPasswordTooLong
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return Password{}, errors.Wrap(err, "[NewPassword] failed to generate salt")
	}

	return Password{
		Hashed: hex.EncodeToString(derive(password, salt)),
		Salt:   hex.EncodeToString(salt),
	}, nil
}

// Verify reports whether password matches. It never errors: oversized input
// and corrupt stored values simply fail.
func (p Password) Verify(password string) bool {
	if len(password) > MaxPasswordLength {
		return false
	}

	salt, err := hex.DecodeString(p.Salt)
	if err != nil {
		return false
	}
	stored, err := hex.DecodeString(p.Hashed)
	if err != nil || len(stored) != keyLength {
		return false
	}

	return subtle.ConstantTimeCompare(derive(password, salt), stored) == 1
}

func derive(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, Iterations, keyLength, sha256.New)
}
