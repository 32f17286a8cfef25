package config

import (
	"fmt"

	"github.com/kilianp07/ridepool/core/datamodel"
	"github.com/kilianp07/ridepool/core/factory"
)

// MatrixConfig selects the travel-time provider. Provider.Type is one of
// "graphhopper", "googlemaps" or "euclidean"; Provider.Conf holds the
// provider settings (url, key, timeout, requests per second).
type MatrixConfig struct {
	Provider factory.ModuleConfig `json:"provider"`
	// Profile and FallbackProfile apply to vehicles without their own.
	Profile         string `json:"profile"`
	FallbackProfile string `json:"fallback_profile"`
}

// SetDefaults fills the provider type and profiles.
func (c *MatrixConfig) SetDefaults() {
	if c.Provider.Type == "" {
		c.Provider.Type = "euclidean"
	}
	if c.Profile == "" {
		c.Profile = datamodel.DefaultProfile
	}
	if c.FallbackProfile == "" {
		c.FallbackProfile = datamodel.DefaultFallbackProfile
	}
}

// Validate checks the provider type.
func (c MatrixConfig) Validate() error {
	switch c.Provider.Type {
	case "graphhopper", "googlemaps", "euclidean":
		return nil
	}
	return fmt.Errorf("matrix: unknown provider %q", c.Provider.Type)
}
