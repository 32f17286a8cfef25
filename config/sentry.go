package config

import "fmt"

// SentryConfig enables error reporting. An empty DSN keeps the no-op monitor.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	Release          string  `json:"release"`
	ServerName       string  `json:"server_name"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	FlushSeconds     int     `json:"flush_seconds"`
}

func (c *SentryConfig) SetDefaults() {
	if c.Environment == "" {
		c.Environment = "production"
	}
	if c.FlushSeconds <= 0 {
		c.FlushSeconds = 2
	}
}

func (c SentryConfig) Validate() error {
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return fmt.Errorf("sentry: traces_sample_rate %.2f outside [0,1]", c.TracesSampleRate)
	}
	return nil
}
