package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error surfaced to a caller is classified by one of these
// sentinels via errors.Is; anything that matches none of them is internal.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
)

var (
	// Unauthorized refinements
	ErrNoSession      = fmt.Errorf("%w: no session", ErrUnauthorized)
	ErrSessionExpired = fmt.Errorf("%w: session expired", ErrUnauthorized)
	ErrNotLoggedIn    = fmt.Errorf("%w: not logged in", ErrUnauthorized)
	ErrNotAdmin       = fmt.Errorf("%w: admin privileges required", ErrUnauthorized)

	// Validation refinements
	ErrInvalidMethod   = fmt.Errorf("%w: invalid access method", ErrValidation)
	ErrPasswordTooLong = fmt.Errorf("%w: password length too large (max is 512 characters)", ErrValidation)
	ErrInvalidInput    = fmt.Errorf("%w: invalid input", ErrValidation)

	// Login failures collapse into a single not-found flavoured error so that
	// unknown usernames and wrong passwords are indistinguishable.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrNotFound)

	// Conflict refinements
	ErrUsernameTaken  = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrOwnListJoin    = fmt.Errorf("%w: cannot join a list you own", ErrConflict)
	ErrFavoriteExists = fmt.Errorf("%w: favorite already exists", ErrConflict)
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Code classifies err into a short machine readable code.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "invalid_request"
	case errors.Is(err, ErrNotAdmin):
		return "forbidden"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	}
	return "server_error"
}
