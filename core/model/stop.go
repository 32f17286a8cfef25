package model

import "time"

// StopType is the kind of action performed at a stop.
type StopType string

const (
	StopCurrentLocation StopType = "current_location"
	StopPickup          StopType = "pickup"
	StopDropoff         StopType = "dropoff"
)

// StopStatus is the fulfilment state of a stop.
type StopStatus string

const (
	StatusDone      StopStatus = "done"
	StatusWaiting   StopStatus = "waiting"
	StatusCancelled StopStatus = "cancelled"
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Stop is one action in a vehicle route.
type Stop struct {
	Type          StopType   `json:"stop_type" yaml:"stop_type"`
	Status        StopStatus `json:"status" yaml:"status"`
	Coordinates   Point      `json:"coordinates" yaml:"coordinates"`
	Passengers    int        `json:"passengers" yaml:"passengers"`
	ADAPassengers int        `json:"ada_passengers" yaml:"ada_passengers"`
	Action        ActionID   `json:"action,omitempty" yaml:"action,omitempty"`
	FixedStopID   string     `json:"fixed_stop_id,omitempty" yaml:"fixed_stop_id,omitempty"`

	// Cost is cumulative: meters for distance plans, seconds since the
	// start of the plan for time plans.
	Cost     float64 `json:"cost" yaml:"cost"`
	Distance float64 `json:"distance" yaml:"distance"`
	// ETA is only set on time plans.
	ETA        time.Time `json:"eta,omitempty" yaml:"eta,omitempty"`
	InitialETA time.Time `json:"initial_eta,omitempty" yaml:"initial_eta,omitempty"`
}

// Completed reports whether the stop is done or cancelled.
func (s Stop) Completed() bool {
	return s.Status == StatusDone || s.Status == StatusCancelled
}

// IsFixedStop reports whether the stop is served at a shared curb-side stop.
func (s Stop) IsFixedStop() bool { return s.FixedStopID != "" }

// SameFixedStop reports whether both stops are served at the same fixed stop.
func (s Stop) SameFixedStop(o Stop) bool {
	return s.FixedStopID != "" && s.FixedStopID == o.FixedStopID
}

// Route is the ordered list of stops of a single vehicle.
type Route []Stop

// Clone returns a copy that can be modified without touching r.
func (r Route) Clone() Route {
	if r == nil {
		return nil
	}
	out := make(Route, len(r))
	copy(out, r)
	return out
}

// CurrentLocation builds the synthetic start stop of a plan.
func CurrentLocation(p Point) Stop {
	return Stop{Type: StopCurrentLocation, Status: StatusDone, Coordinates: p}
}
