package taskly

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/taskly/service/history"
	"github.com/viant/taskly/service/meta"
)

// Config is a serialisable representation of the service configuration.  It
// can be populated from YAML or JSON; fields left unset inherit their
// package defaults.
type Config struct {
	History   HistoryConfig   `json:"history" yaml:"history"`
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
}

// Recognised history backends.
const (
	HistoryBackendMemory = "memory"
	HistoryBackendSQLite = "sqlite"
)

// HistoryConfig controls completed-run retention.  Retention is a
// diagnostics feature and therefore off unless enabled.
type HistoryConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	MaxEntries int    `json:"maxEntries" yaml:"maxEntries"`
	Backend    string `json:"backend,omitempty" yaml:"backend,omitempty"`
	DSN        string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// SchedulerConfig controls the default in-process scheduler.
type SchedulerConfig struct {
	ShutdownTimeoutMs int `json:"shutdownTimeoutMs" yaml:"shutdownTimeoutMs"`
}

// DefaultConfig returns a Config populated with the same defaults the
// constructors use.  Callers may modify the returned struct before passing
// it to New via WithConfig.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			MaxEntries: history.DefaultMaxEntries,
			Backend:    HistoryBackendMemory,
		},
		Scheduler: SchedulerConfig{
			ShutdownTimeoutMs: 5000,
		},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.History.Enabled {
		if c.History.MaxEntries <= 0 {
			return fmt.Errorf("history.maxEntries must be > 0")
		}
		switch c.History.Backend {
		case "", HistoryBackendMemory, HistoryBackendSQLite:
		default:
			return fmt.Errorf("unknown history.backend: %q", c.History.Backend)
		}
	}
	if c.Scheduler.ShutdownTimeoutMs < 0 {
		return fmt.Errorf("scheduler.shutdownTimeoutMs must be >= 0")
	}
	return nil
}

// LoadConfig reads a YAML configuration document from URL (any scheme the
// abstract file system understands), expanding ${env.KEY} expressions.
// Unset fields keep their defaults.
func LoadConfig(ctx context.Context, URL string, fsOptions ...storage.Option) (*Config, error) {
	config := DefaultConfig()
	if err := meta.New(afs.New(), "", fsOptions...).Load(ctx, URL, config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return config, nil
}
