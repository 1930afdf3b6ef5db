// Package kvstore provides the durable key/value backends behind the
// Persistence Service. Backends store opaque string values; the remote
// package maps trip records onto keys.
package kvstore

import "context"

// Backend is server-side key/value storage. Implementations must be safe for
// concurrent use.
type Backend interface {
	// Get returns the value for key. Missing keys report found=false with a
	// nil error.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set creates or overwrites the value for key.
	Set(ctx context.Context, key, value string) error
	// Close releases backend resources.
	Close() error
}
