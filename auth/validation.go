package auth

import (
	"strings"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/pkg/errors"
)

// Validate checks that both credentials are present. Length limits are left
// to the credential store so that an oversized password simply fails to match.
func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.Wrap(apperrors.ErrInvalidInput, "username is required")
	}
	if r.Password == "" {
		return errors.Wrap(apperrors.ErrInvalidInput, "password is required")
	}
	return nil
}

func (r CreateAccountRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.Wrap(apperrors.ErrInvalidInput, "username is required")
	}
	if r.Password == "" {
		return errors.Wrap(apperrors.ErrInvalidInput, "password is required")
	}
	if r.Invite != nil && strings.TrimSpace(*r.Invite) == "" {
		return errors.Wrap(apperrors.ErrInvalidInput, "invite must not be empty")
	}
	return nil
}
