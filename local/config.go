package local

import "time"

const defaultMemoTTL = 5 * time.Minute

// Config holds local cache initialization parameters.
type Config struct {
	Path    string        `json:"path,omitempty" yaml:"path,omitempty"`         // FileStore root; empty keeps records in memory.
	MemoTTL time.Duration `json:"memo_ttl,omitempty" yaml:"memo_ttl,omitempty"` // Lifetime of decoded records in the read memo.
}

// DefaultConfig returns the default local cache configuration.
func DefaultConfig() Config {
	return Config{MemoTTL: defaultMemoTTL}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Path != "" {
		c.Path = source.Path
	}
	if source.MemoTTL > 0 {
		c.MemoTTL = source.MemoTTL
	}
}

// NewStore creates a Store from configuration: a FileStore rooted at Path,
// or an in-memory store when Path is empty.
func NewStore(cfg *Config) Store {
	if cfg.Path == "" {
		return NewMemoryStore()
	}
	return NewFileStore(cfg.Path)
}
