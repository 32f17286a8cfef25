package model

// Location defaults.
const (
	DefaultCancelTime          = 10
	DefaultQueueTimeLimit      = 30
	DefaultInversionRangeFeet  = 2300
	DefaultETAIncreaseLimit    = 15
	DefaultConcurrentRideLimit = 3
)

// LocationConfig holds the dispatch limits of a service location. Times
// are expressed in minutes.
type LocationConfig struct {
	ID                  string `json:"id" yaml:"id"`
	CancelTime          int    `json:"cancel_time" yaml:"cancel_time"`
	QueueTimeLimit      int    `json:"queue_time_limit" yaml:"queue_time_limit"`
	InversionRangeFeet  int    `json:"inversion_range_feet" yaml:"inversion_range_feet"`
	ETAIncreaseLimit    int    `json:"eta_increase_limit" yaml:"eta_increase_limit"`
	ConcurrentRideLimit int    `json:"concurrent_ride_limit" yaml:"concurrent_ride_limit"`
	FleetEnabled        bool   `json:"fleet_enabled" yaml:"fleet_enabled"`
	IsADA               bool   `json:"is_ada" yaml:"is_ada"`
}

// SetDefaults replaces unset or invalid limits with defaults.
func (c *LocationConfig) SetDefaults() {
	if c.CancelTime <= 0 {
		c.CancelTime = DefaultCancelTime
	}
	if c.QueueTimeLimit <= 0 {
		c.QueueTimeLimit = DefaultQueueTimeLimit
	}
	if c.InversionRangeFeet <= 0 {
		c.InversionRangeFeet = DefaultInversionRangeFeet
	}
	if c.ETAIncreaseLimit <= 0 {
		c.ETAIncreaseLimit = DefaultETAIncreaseLimit
	}
	if c.ConcurrentRideLimit <= 0 {
		c.ConcurrentRideLimit = DefaultConcurrentRideLimit
	}
}

// DefaultLocationConfig returns the limits used when a location cannot be
// loaded.
func DefaultLocationConfig(id string) LocationConfig {
	c := LocationConfig{ID: id}
	c.SetDefaults()
	return c
}

// DriverLimitSort selects how candidates are ordered before the initial
// limit is applied.
type DriverLimitSort string

const (
	SortClosest DriverLimitSort = "closest"
	SortIdle    DriverLimitSort = "idle"
)

// Settings are the global dispatch settings. Negative limits disable the
// corresponding cap.
type Settings struct {
	DriverLimitSort    DriverLimitSort `json:"driver_limit_sort" yaml:"driver_limit_sort"`
	InitialDriverLimit int             `json:"initial_driver_limit" yaml:"initial_driver_limit"`
	SkipDistanceTSP    bool            `json:"skip_distance_tsp" yaml:"skip_distance_tsp"`
	FinalDriverLimit   int             `json:"final_driver_limit" yaml:"final_driver_limit"`
}

// SetDefaults fills unset values.
func (s *Settings) SetDefaults() {
	if s.DriverLimitSort != SortClosest && s.DriverLimitSort != SortIdle {
		s.DriverLimitSort = SortClosest
	}
	if s.InitialDriverLimit == 0 {
		s.InitialDriverLimit = 10
	}
	if s.FinalDriverLimit == 0 {
		s.FinalDriverLimit = 10
	}
}

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	var s Settings
	s.SetDefaults()
	return s
}

// Limit truncates n items to limit, negative limits keep everything.
func Limit(n, limit int) int {
	if limit < 0 || limit > n {
		return n
	}
	return limit
}
