package kvstore

import "errors"

// Sentinel errors for backend construction and I/O.
var (
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrMissingDSN    = errors.New("store DSN is required")
	ErrBackend       = errors.New("store backend failure")
)
