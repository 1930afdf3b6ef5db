package completion

import (
	"fmt"
	"time"
)

// Supported providers.
const (
	ProviderOpenAI = "openai"
	ProviderHTTP   = "http"
	ProviderMock   = "mock"
)

const (
	defaultModel   = "gpt-4"
	defaultTimeout = 60 * time.Second
)

// Config holds completion provider parameters.
type Config struct {
	Provider string        `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model    string        `json:"model,omitempty" yaml:"model,omitempty"`
	BaseURL  string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey   string        `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultConfig returns the default completion configuration (mock provider).
func DefaultConfig() Config {
	return Config{
		Provider: ProviderMock,
		Model:    defaultModel,
		Timeout:  defaultTimeout,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}
}

// New creates a Completer from configuration.
func New(cfg *Config) (Completer, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAI(cfg)
	case ProviderHTTP:
		return NewHTTP(cfg)
	case "", ProviderMock:
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}
