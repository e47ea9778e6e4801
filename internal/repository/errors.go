package repository

import "errors"

var (
	// Common errors
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrHasAssociatedRecords = errors.New("has associated records")

	// ErrLockTimeout is returned when a table scope lock could not be acquired in time.
	// It is retryable.
	ErrLockTimeout = errors.New("lock timeout")

	// User errors
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
