package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidRequest = errors.New("invalid analysis request")
	ErrNotStarted     = errors.New("service not started")
	ErrQueueFull      = errors.New("analysis queue is full")
	ErrNotFound       = errors.New("not found")
)
