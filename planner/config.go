package planner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/planner/completion"
	"github.com/tailored-agentic-units/planner/kvstore"
	"github.com/tailored-agentic-units/planner/local"
	"github.com/tailored-agentic-units/planner/remote"
	"github.com/tailored-agentic-units/planner/server"
	"github.com/tailored-agentic-units/planner/session"
)

const (
	defaultQueueSize = 32
	defaultObserver  = "slog"
)

// Config holds initialization parameters for all planner subsystems.
// Each subsystem section delegates to that subsystem's config-driven constructor.
//
// Remote selects the durable tier: with Remote.URL set the controller talks to
// a Persistence Service over HTTP, otherwise it writes the Store backend
// directly.
type Config struct {
	Session    session.Config    `json:"session" yaml:"session"`
	Local      local.Config      `json:"local" yaml:"local"`
	Remote     remote.Config     `json:"remote" yaml:"remote"`
	Store      kvstore.Config    `json:"store" yaml:"store"`
	Completion completion.Config `json:"completion" yaml:"completion"`
	Server     server.Config     `json:"server" yaml:"server"`
	QueueSize  int               `json:"queue_size,omitempty" yaml:"queue_size,omitempty"`
	Observer   string            `json:"observer,omitempty" yaml:"observer,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Session:    session.DefaultConfig(),
		Local:      local.DefaultConfig(),
		Remote:     remote.DefaultConfig(),
		Store:      kvstore.DefaultConfig(),
		Completion: completion.DefaultConfig(),
		Server:     server.DefaultConfig(),
		QueueSize:  defaultQueueSize,
		Observer:   defaultObserver,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Session.Merge(&source.Session)
	c.Local.Merge(&source.Local)
	c.Remote.Merge(&source.Remote)
	c.Store.Merge(&source.Store)
	c.Completion.Merge(&source.Completion)
	c.Server.Merge(&source.Server)

	if source.QueueSize > 0 {
		c.QueueSize = source.QueueSize
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// LoadConfig reads a JSON or YAML config file (chosen by extension), merges
// it with defaults, and returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

// ApplyEnv overlays environment variables onto c.
func (c *Config) ApplyEnv() {
	env := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	env("OPENAI_API_KEY", &c.Completion.APIKey)
	env("PLANNER_COMPLETION_PROVIDER", &c.Completion.Provider)
	env("PLANNER_COMPLETION_MODEL", &c.Completion.Model)
	env("PLANNER_COMPLETION_URL", &c.Completion.BaseURL)
	env("PLANNER_REMOTE_URL", &c.Remote.URL)
	env("PLANNER_STORE_DRIVER", &c.Store.Driver)
	env("PLANNER_STORE_DSN", &c.Store.DSN)
	env("PLANNER_LOCAL_PATH", &c.Local.Path)
	env("ALLOWED_ORIGINS", &c.Server.AllowOrigins)

	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
}
