package users

import (
	"strings"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/internal/utils"
	"github.com/pkg/errors"
)

const maxUsernameLength = 64

type User struct {
	ID       string   `json:"id"`       // Unique identifier for the user (32 hex chars)
	Username string   `json:"username"` // Unique username
	Password Password `json:"-"`        // Salted PBKDF2 hash - never serialize
	Admin    bool     `json:"admin"`    // Admin users may issue account creation invites
}

// RedactedUser is the public view of a user.
type RedactedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
}

// New validates the username, hashes the password and returns a user with a fresh id.
func New(username, password string, admin bool) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > maxUsernameLength {
		return nil, errors.Wrap(apperrors.ErrInvalidInput, "[users New] username must be between 1 and 64 characters")
	}

	hashed, err := NewPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "[users New] failed to hash password")
	}

	return &User{
		ID:       utils.NewID(),
		Username: username,
		Password: hashed,
		Admin:    admin,
	}, nil
}

func (u *User) Redacted() RedactedUser {
	return RedactedUser{ID: u.ID, Username: u.Username, Admin: u.Admin}
}

// CheckPassword verifies password against the user's stored hash.
func (u *User) CheckPassword(password string) bool {
	return u.Password.Verify(password)
}
