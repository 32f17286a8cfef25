package logging

import "fmt"

// Backends.
const (
	BackendNone   = ""
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// Config selects and tunes the audit store.
type Config struct {
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults fills unset rotation values.
func (c *Config) SetDefaults() {
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 50
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays <= 0 {
		c.MaxAgeDays = 30
	}
}

// Validate checks the backend name and path.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendNone:
		return nil
	case BackendJSONL, BackendSQLite:
		if c.Path == "" {
			return fmt.Errorf("audit: %s backend requires a path", c.Backend)
		}
		return nil
	}
	return fmt.Errorf("audit: unknown backend %q", c.Backend)
}

// Open builds the store described by c.
func Open(c Config) (LogStore, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.SetDefaults()
	switch c.Backend {
	case BackendJSONL:
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	case BackendSQLite:
		return NewSQLiteStore(c.Path)
	}
	return NopStore{}, nil
}
