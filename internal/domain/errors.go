package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrUnknownMode        = errors.New("unknown authentication mode")
	ErrEmptyMessage       = errors.New("message content is empty")
	ErrNoSession          = errors.New("no active session")
	ErrNotFound           = errors.New("requested resource not found")
)

// Describe returns the text shown to the user for an authentication error.
// Errors without a known description fall back to fallback.
func Describe(err error, fallback string) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, ErrUsernameTaken):
		return "Username already taken"
	case errors.Is(err, ErrMissingCredentials):
		return "Please fill in all fields"
	default:
		return fallback
	}
}
