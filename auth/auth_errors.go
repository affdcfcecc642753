package auth

import (
	"fmt"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
)

var (
	ErrAccountCreationDisabled = fmt.Errorf("%w: account creation requires an invite", apperrors.ErrUnauthorized)
	ErrInvalidChannel          = fmt.Errorf("%w: unknown event channel", apperrors.ErrValidation)
)
