package protocol

import "errors"

// Sentinel errors for data model validation.
var (
	ErrInvalidLog  = errors.New("invalid message log")
	ErrInvalidTrip = errors.New("invalid trip")
)
