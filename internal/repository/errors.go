package repository

import "errors"

var (
	// ErrNotFound is returned when a requested file or directory doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a non-overwriting create finds the path taken
	ErrConflict = errors.New("conflict: path already exists")

	// ErrForbidden is returned when the store rejects the credentials
	ErrForbidden = errors.New("forbidden: authorization required")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
