package login

import (
	"errors"
)

var (
	// ErrValidation indicates the credentials failed shape validation
	ErrValidation = errors.New("Invalid credentials format")

	// ErrUserNotFound indicates no user matches the email
	ErrUserNotFound = errors.New("User not found")

	// ErrWrongPassword indicates the password did not match
	ErrWrongPassword = errors.New("Wrong password")

	// ErrStore indicates the user store could not be queried
	ErrStore = errors.New("User store unavailable")
)

// UpstreamError wraps a token issuer failure. Message is exposed to callers
type UpstreamError struct {
	Message string
	Code    string
	Err     error
}

func (e *UpstreamError) Error() string {
	return "token issuer: " + e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
