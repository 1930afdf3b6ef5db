package remote

import "time"

const defaultTimeout = 15 * time.Second

// Config holds HTTP store parameters.
type Config struct {
	// URL is the base URL of the Persistence Service, e.g. http://localhost:3001.
	URL     string        `json:"url,omitempty" yaml:"url,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultConfig returns the default HTTP store configuration. An empty URL
// means no remote service is configured.
func DefaultConfig() Config {
	return Config{Timeout: defaultTimeout}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.URL != "" {
		c.URL = source.URL
	}
	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}
}
