package model

// MatchingRule controls which requests a fleet vehicle may serve.
type MatchingRule string

const (
	RuleLocked    MatchingRule = "locked"
	RulePriority  MatchingRule = "priority"
	RuleExclusive MatchingRule = "exclusive"
	RuleShared    MatchingRule = "shared"
)

// Service lists the rider types a fleet vehicle accepts.
type Service string

const (
	ServiceMixed         Service = "mixed_service"
	ServiceADAOnly       Service = "ada_only"
	ServicePassengerOnly Service = "passenger_only"
)

// Vehicle describes a fleet vehicle.
type Vehicle struct {
	PassengerCapacity int          `json:"passenger_capacity" yaml:"passenger_capacity"`
	ADACapacity       int          `json:"ada_capacity" yaml:"ada_capacity"`
	MatchingRule      MatchingRule `json:"matching_rule" yaml:"matching_rule"`
	Service           Service      `json:"service" yaml:"service"`
	Zones             []string     `json:"zones" yaml:"zones"`
	Profile           string       `json:"profile,omitempty" yaml:"profile,omitempty"`
	FallbackProfile   string       `json:"fallback_profile,omitempty" yaml:"fallback_profile,omitempty"`
}

// InZone reports whether the vehicle is assigned to zone.
func (v Vehicle) InZone(zone string) bool {
	if zone == "" {
		return false
	}
	for _, z := range v.Zones {
		if z == zone {
			return true
		}
	}
	return false
}

// Accepts reports whether the vehicle service accepts the rider type.
func (v Vehicle) Accepts(ada bool) bool {
	switch v.Service {
	case ServiceMixed:
		return true
	case ServiceADAOnly:
		return ada
	case ServicePassengerOnly:
		return !ada
	}
	return false
}

// ActiveRide summarises a ride assigned to a driver. Hailed rides were
// picked up on the street and have no known destination.
type ActiveRide struct {
	ID         string `json:"id" yaml:"id"`
	Passengers int    `json:"passengers" yaml:"passengers"`
	IsADA      bool   `json:"is_ada" yaml:"is_ada"`
	Hailed     bool   `json:"hailed" yaml:"hailed"`
}

// Driver is a point-in-time snapshot of a driver and its vehicle.
type Driver struct {
	ID          string       `json:"id" yaml:"id"`
	LocationID  string       `json:"location_id" yaml:"location_id"`
	Available   bool         `json:"available" yaml:"available"`
	IsADA       bool         `json:"is_ada" yaml:"is_ada"`
	Position    Point        `json:"position" yaml:"position"`
	Vehicle     *Vehicle     `json:"vehicle,omitempty" yaml:"vehicle,omitempty"`
	ActiveRides []ActiveRide `json:"active_rides" yaml:"active_rides"`
	ActiveRoute Route        `json:"active_route" yaml:"active_route"`

	// Capacity is resolved by the store from the vehicle or from location
	// defaults.
	Capacity Capacity `json:"capacity" yaml:"capacity"`
	// PickupDistance is the distance in meters to the request pickup, set by
	// candidate queries.
	PickupDistance float64 `json:"pickup_distance,omitempty" yaml:"pickup_distance,omitempty"`
}

// Clone copies the slices and the vehicle of d.
func (d Driver) Clone() Driver {
	if d.Vehicle != nil {
		v := *d.Vehicle
		v.Zones = append([]string(nil), v.Zones...)
		d.Vehicle = &v
	}
	d.ActiveRides = append([]ActiveRide(nil), d.ActiveRides...)
	d.ActiveRoute = d.ActiveRoute.Clone()
	return d
}

// ActiveRidesCount is the number of rides assigned and not yet fulfilled.
func (d Driver) ActiveRidesCount() int { return len(d.ActiveRides) }

// WaitingStops counts the pending stops of the active route.
func (d Driver) WaitingStops() int {
	n := 0
	for _, s := range d.ActiveRoute {
		if s.Status == StatusWaiting {
			n++
		}
	}
	return n
}

// Profiles returns the routing profile and its fallback, empty when unset.
func (d Driver) Profiles() (profile, fallback string) {
	if d.Vehicle == nil {
		return "", ""
	}
	return d.Vehicle.Profile, d.Vehicle.FallbackProfile
}

// Capacity holds the seats of a vehicle and the seats already taken by
// hailed rides.
type Capacity struct {
	Passengers       int `json:"passengers" yaml:"passengers"`
	ADA              int `json:"ada" yaml:"ada"`
	HailedPassengers int `json:"hailed_passengers" yaml:"hailed_passengers"`
	HailedADA        int `json:"hailed_ada" yaml:"hailed_ada"`
}

// HailedCapacity sums the seats used by hailed rides.
func HailedCapacity(rides []ActiveRide) (passengers, ada int) {
	for _, r := range rides {
		if !r.Hailed {
			continue
		}
		if r.IsADA {
			passengers += r.Passengers - 1
			ada++
		} else {
			passengers += r.Passengers
		}
	}
	return passengers, ada
}

// HailedTotal is the number of seats held by hailed riders.
func (c Capacity) HailedTotal() int { return c.HailedPassengers + c.HailedADA }

// WithoutHailed ignores seats reserved by hailed rides.
func (c Capacity) WithoutHailed() Capacity {
	c.HailedPassengers, c.HailedADA = 0, 0
	return c
}

// Available returns the free seats, never negative.
func (c Capacity) Available() (passengers, ada int) {
	return max(c.Passengers-c.HailedPassengers, 0), max(c.ADA-c.HailedADA, 0)
}
