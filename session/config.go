package session

import (
	"strings"

	"github.com/tailored-agentic-units/planner/core/protocol"
)

// Config holds session initialization parameters.
type Config struct {
	// SystemPrompt overrides the framing message. Each %s is replaced with
	// the trip location; without one, the location is appended.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
}

// SystemMessage returns the framing message for location.
func (c *Config) SystemMessage(location string) protocol.Message {
	if c.SystemPrompt == "" {
		return protocol.SystemMessage(location)
	}
	if strings.Contains(c.SystemPrompt, "%s") {
		return protocol.NewMessage(protocol.RoleSystem, strings.ReplaceAll(c.SystemPrompt, "%s", location))
	}
	content := strings.TrimRight(c.SystemPrompt, " ") + " The user's trip location is " + location + "."
	return protocol.NewMessage(protocol.RoleSystem, content)
}

// Fresh creates a Session for a trip with no stored state: the log holds only
// the system message and there is no snapshot.
func Fresh(cfg *Config, tripID, location string) (Session, error) {
	if tripID == "" || location == "" {
		return nil, ErrMissingTrip
	}
	return newMemorySession(tripID, location, []protocol.Message{cfg.SystemMessage(location)}, nil), nil
}

// Restore creates a Session from stored state. The log must pass
// protocol.ValidateLog; snap may be nil.
func Restore(tripID, location string, log []protocol.Message, snap *protocol.Snapshot) (Session, error) {
	if tripID == "" || location == "" {
		return nil, ErrMissingTrip
	}
	if err := protocol.ValidateLog(log); err != nil {
		return nil, err
	}
	return newMemorySession(tripID, location, log, snap), nil
}
