package config

import "fmt"

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// StoreConfig selects where requests, drivers and locations are read.
type StoreConfig struct {
	Backend string `json:"backend"`
	// Fixtures is a YAML file loaded by the memory backend.
	Fixtures string `json:"fixtures"`
	DSN      string `json:"dsn"`
	// MaxConns bounds the postgres pool.
	MaxConns int32       `json:"max_conns"`
	Redis    RedisConfig `json:"redis"`
}

// RedisConfig enables the read-through cache of location configs and
// settings when Addr is set.
type RedisConfig struct {
	Addr       string `json:"addr"`
	Password   string `json:"password"`
	DB         int    `json:"db"`
	TTLSeconds int    `json:"ttl_seconds"`
}

func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = StoreMemory
	}
	if c.MaxConns <= 0 {
		c.MaxConns = 10
	}
	if c.Redis.TTLSeconds <= 0 {
		c.Redis.TTLSeconds = 60
	}
}

func (c StoreConfig) Validate() error {
	switch c.Backend {
	case StoreMemory:
		return nil
	case StorePostgres:
		if c.DSN == "" {
			return fmt.Errorf("store: postgres backend requires a dsn")
		}
		return nil
	}
	return fmt.Errorf("store: unknown backend %q", c.Backend)
}
