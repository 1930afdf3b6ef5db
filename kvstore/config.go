package kvstore

import (
	"context"
	"fmt"
)

// Supported drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
)

const (
	defaultDatabase    = "planner"
	defaultRedisPrefix = "planner:"
)

// Config holds backend initialization parameters.
type Config struct {
	Driver   string `json:"driver,omitempty" yaml:"driver,omitempty"`     // memory, sqlite, redis, or mongo.
	DSN      string `json:"dsn,omitempty" yaml:"dsn,omitempty"`           // File path, redis:// URL, or mongodb:// URI.
	Database string `json:"database,omitempty" yaml:"database,omitempty"` // MongoDB database name.
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`     // Redis key prefix.
}

// DefaultConfig returns the default backend configuration (in-memory).
func DefaultConfig() Config {
	return Config{
		Driver:   DriverMemory,
		Database: defaultDatabase,
		Prefix:   defaultRedisPrefix,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Driver != "" {
		c.Driver = source.Driver
	}
	if source.DSN != "" {
		c.DSN = source.DSN
	}
	if source.Database != "" {
		c.Database = source.Database
	}
	if source.Prefix != "" {
		c.Prefix = source.Prefix
	}
}

// New creates a Backend from configuration.
func New(ctx context.Context, cfg *Config) (Backend, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("%w: sqlite", ErrMissingDSN)
		}
		return NewSQLite(ctx, cfg.DSN)
	case DriverRedis:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("%w: redis", ErrMissingDSN)
		}
		return NewRedis(ctx, cfg.DSN, cfg.Prefix)
	case DriverMongo:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("%w: mongo", ErrMissingDSN)
		}
		return NewMongo(ctx, cfg.DSN, cfg.Database)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}
