package domain

import "errors"

// Sentinel errors surfaced by the core services. The API layer maps each to a
// deterministic HTTP status; none are retried.
var (
	// ErrInvalidCredentials covers both unknown username and wrong password,
	// so the response never reveals which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrForbidden          = errors.New("insufficient privilege")
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrValidation         = errors.New("validation failed")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)
