package auth

import "errors"

// ErrInvalidCredentials covers both unknown username and wrong password so
// responses never reveal whether an account exists.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrUserExists is returned when a signup collides with an existing username
// or email.
var ErrUserExists = errors.New("username or email already exists")

// ValidationError reports malformed client input with per-field details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
