package model

// Request is a rider's ask for a pooled trip.
type Request struct {
	ID         string `json:"id" yaml:"id"`
	LocationID string `json:"location_id" yaml:"location_id"`
	Passengers int    `json:"passengers" yaml:"passengers"`
	IsADA      bool   `json:"is_ada" yaml:"is_ada"`
	Pickup     Point  `json:"pickup" yaml:"pickup"`
	Dropoff    Point  `json:"dropoff" yaml:"dropoff"`

	PickupFixedStopID  string `json:"pickup_fixed_stop_id,omitempty" yaml:"pickup_fixed_stop_id,omitempty"`
	DropoffFixedStopID string `json:"dropoff_fixed_stop_id,omitempty" yaml:"dropoff_fixed_stop_id,omitempty"`

	PickupZone  string `json:"pickup_zone,omitempty" yaml:"pickup_zone,omitempty"`
	DropoffZone string `json:"dropoff_zone,omitempty" yaml:"dropoff_zone,omitempty"`
}

// Seats returns the non-ADA and ADA seats the request occupies. An ADA
// request reserves one accessible seat for one of its passengers.
func (r Request) Seats() (passengers, ada int) {
	if r.IsADA {
		return r.Passengers - 1, 1
	}
	return r.Passengers, 0
}

// Actions returns the pickup and dropoff stops of the request, shaped like
// route stops so they can be merged into a vehicle route.
func (r Request) Actions() []Stop {
	pax, ada := r.Seats()
	base := Stop{
		Status:        StatusWaiting,
		Passengers:    pax,
		ADAPassengers: ada,
		Action:        RequestID(r.ID),
	}
	pickup, dropoff := base, base
	pickup.Type, pickup.Coordinates, pickup.FixedStopID = StopPickup, r.Pickup, r.PickupFixedStopID
	dropoff.Type, dropoff.Coordinates, dropoff.FixedStopID = StopDropoff, r.Dropoff, r.DropoffFixedStopID
	return []Stop{pickup, dropoff}
}
