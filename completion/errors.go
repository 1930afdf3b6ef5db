package completion

import "errors"

// Sentinel errors for completion providers.
var (
	ErrEmptyReply      = errors.New("no response received")
	ErrUnknownProvider = errors.New("unknown completion provider")
	ErrMissingAPIKey   = errors.New("completion API key not configured")
	ErrRequestFailed   = errors.New("completion request failed")
)
