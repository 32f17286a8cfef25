// Package datamodel turns a stop list into the immutable input of the
// routing solver.
package datamodel

import (
	"github.com/kilianp07/ridepool/core/model"
	"github.com/kilianp07/ridepool/core/route"
)

// Mode selects which matrices a model carries.
type Mode int

const (
	// ModeDistance uses geodesic distances only.
	ModeDistance Mode = iota
	// ModeTime adds a travel time matrix and yields wall-clock ETAs.
	ModeTime
)

func (m Mode) String() string {
	if m == ModeTime {
		return "time"
	}
	return "distance"
}

// DropoffLimit is the remaining fixed-stop budget of a ride picked up
// before the planning horizon.
type DropoffLimit struct {
	Action model.ActionID `json:"action"`
	Node   int            `json:"node"`
	Budget int            `json:"budget"`
}

// CloseGroup lists the pickups located next to a dropoff. Pickup is -1 for
// lone dropoffs.
type CloseGroup struct {
	Pickup  int   `json:"pickup"`
	Dropoff int   `json:"dropoff"`
	Near    []int `json:"near"`
}

// DataModel is the routing input of one vehicle. Node 0 is the current
// location. A DataModel is never modified after Build; the With methods
// return adjusted copies that share the matrices.
type DataModel struct {
	Nodes    model.Route `json:"nodes"`
	Distance [][]float64 `json:"distance"`
	// Time is nil in distance mode.
	Time     [][]float64 `json:"time,omitempty"`
	Mode     Mode        `json:"mode"`
	Profile  string      `json:"profile"`
	Degraded bool        `json:"degraded"`

	Pairs             []route.Pair        `json:"pairs"`
	PickupOf          map[int]int         `json:"-"`
	Lone              []route.LoneDropoff `json:"lone_dropoffs"`
	OnboardPassengers int                 `json:"onboard_passengers"`
	OnboardADA        int                 `json:"onboard_ada"`
	DropoffLimits     []DropoffLimit      `json:"dropoff_limits,omitempty"`
	CloseGroups       []CloseGroup        `json:"close_groups,omitempty"`

	RideCapacity      int  `json:"ride_capacity"`
	PassengerCapacity int  `json:"passenger_capacity"`
	ADACapacity       int  `json:"ada_capacity"`
	KeepFirstStop     bool `json:"keep_first_stop"`
}

// Len is the number of nodes.
func (dm *DataModel) Len() int { return len(dm.Nodes) }

// WithoutProximity drops the close-node groups and the first stop pin.
func (dm *DataModel) WithoutProximity() *DataModel {
	c := *dm
	c.CloseGroups = nil
	c.KeepFirstStop = false
	return &c
}

// WithCapacity recomputes the seat ceilings from c.
func (dm *DataModel) WithCapacity(c model.Capacity) *DataModel {
	cp := *dm
	cp.PassengerCapacity, cp.ADACapacity = c.Available()
	return &cp
}

// WithoutDropoffLimits drops the fixed-stop budgets of onboard rides.
func (dm *DataModel) WithoutDropoffLimits() *DataModel {
	c := *dm
	c.DropoffLimits = nil
	return &c
}

// Legs returns the distance of each leg when the first n nodes are visited
// in their current order. The first entry is always zero.
func (dm *DataModel) Legs(n int) []float64 {
	n = min(n, dm.Len())
	if n <= 0 {
		return nil
	}
	legs := make([]float64, n)
	for i := 1; i < n; i++ {
		legs[i] = dm.Distance[i-1][i]
	}
	return legs
}
