package session

import "errors"

// Sentinel errors for session construction and mutation.
var (
	ErrMissingTrip    = errors.New("trip id and location are required")
	ErrInvalidMessage = errors.New("invalid message")
)
