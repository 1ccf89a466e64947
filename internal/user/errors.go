package user

import (
	"errors"
)

// Custom error types for the user package
var (
	// ErrInvalidInput indicates the provided input is invalid
	ErrInvalidInput = errors.New("Invalid input provided")

	// ErrUserNotFound indicates the user was not found
	ErrUserNotFound = errors.New("User not found")

	// ErrEmailAlreadyExists indicates the email is already in use
	ErrEmailAlreadyExists = errors.New("Email already exists")

	// ErrDatabaseError indicates an error occurred with the database
	ErrDatabaseError = errors.New("Database operation failed")
)
