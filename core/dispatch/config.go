package dispatch

import (
	"fmt"
	"time"

	"github.com/kilianp07/ridepool/core/route"
)

// Dispatch defaults.
const (
	DefaultWorkers         = 10
	DefaultMaxActiveRides  = 5
	DefaultMaxWaitingStops = 8
)

// Config defines dispatch-related settings.
type Config struct {
	// Workers bounds the concurrent solves of a stage.
	Workers int `json:"workers"`
	// PickupMarginSeconds and DropoffMarginSeconds are the dwell times
	// added to accepted plans.
	PickupMarginSeconds  int `json:"pickup_margin_seconds"`
	DropoffMarginSeconds int `json:"dropoff_margin_seconds"`
	// Drivers at or above MaxActiveRides are never candidates.
	MaxActiveRides int `json:"max_active_rides"`
	// Drivers with more pending stops than MaxWaitingStops are never
	// candidates.
	MaxWaitingStops int `json:"max_waiting_stops"`
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.PickupMarginSeconds <= 0 {
		c.PickupMarginSeconds = int(route.DefaultMargin.Seconds())
	}
	if c.DropoffMarginSeconds <= 0 {
		c.DropoffMarginSeconds = int(route.DefaultMargin.Seconds())
	}
	if c.MaxActiveRides <= 0 {
		c.MaxActiveRides = DefaultMaxActiveRides
	}
	if c.MaxWaitingStops <= 0 {
		c.MaxWaitingStops = DefaultMaxWaitingStops
	}
}

// Validate reports settings that cannot be defaulted.
func (c Config) Validate() error {
	if c.Workers > 256 {
		return fmt.Errorf("dispatch: workers %d exceeds 256", c.Workers)
	}
	return nil
}

// Margins returns the pickup and dropoff dwell times.
func (c Config) Margins() (pickup, dropoff time.Duration) {
	return time.Duration(c.PickupMarginSeconds) * time.Second, time.Duration(c.DropoffMarginSeconds) * time.Second
}
