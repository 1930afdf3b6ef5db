// Package local implements the client-side cache tier: synchronous key/value
// persistence that survives restarts of the planner process but not loss of
// the device. Reads never fail from the caller's point of view; missing or
// malformed values are reported as absent.
package local

// Store is raw synchronous key/value storage. Keys are /-separated paths and
// values are opaque bytes.
type Store interface {
	// Load returns the value for key, or ErrKeyNotFound.
	Load(key string) ([]byte, error)
	// Save creates or overwrites the value for key.
	Save(key string, value []byte) error
}
