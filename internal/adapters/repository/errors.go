package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateJob   = errors.New("job already exists")
	ErrInvalidAttempt = errors.New("invalid attempt")
)
