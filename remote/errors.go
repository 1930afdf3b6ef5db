package remote

import "errors"

// Sentinel errors for remote store operations.
var (
	ErrMissingTripID    = errors.New("tripId is required")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrMalformedRecord  = errors.New("malformed stored record")
)
