package tokenissuer

import (
	"errors"
	"fmt"
)

// Error codes reported alongside issuer failures
const (
	CodeBadResponse = "ERR_BAD_RESPONSE"
	CodeBadRequest  = "ERR_BAD_REQUEST"
	CodeNetwork     = "ERR_NETWORK"
	CodeTimeout     = "ECONNABORTED"
)

// ErrNotConfigured indicates the issuer URL could not be built
var ErrNotConfigured = errors.New("token issuer is not configured")

// Error describes a failed call to the token issuer
type Error struct {
	Code       string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func statusError(statusCode int) *Error {
	code := CodeBadResponse
	if statusCode >= 400 && statusCode < 500 {
		code = CodeBadRequest
	}
	return &Error{
		Code:       code,
		StatusCode: statusCode,
		Message:    fmt.Sprintf("Request failed with status code %d", statusCode),
	}
}
