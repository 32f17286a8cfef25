package metrics

import "github.com/kilianp07/ridepool/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// ListenAddr serves the Prometheus handler when set, e.g. ":2112".
	ListenAddr string `json:"listen_addr"`
}
