package route

import "github.com/kilianp07/ridepool/core/model"

// Pair links the node of a pickup to the node of its dropoff.
type Pair struct {
	Pickup  int `json:"pickup"`
	Dropoff int `json:"dropoff"`
}

// LoneDropoff is a dropoff whose pickup happened before the planning
// horizon.
type LoneDropoff struct {
	Action model.ActionID `json:"action"`
	Node   int            `json:"node"`
}

// Grouping is the ride structure of a stop list.
type Grouping struct {
	Pairs []Pair
	// PickupOf maps a dropoff node to its pickup node.
	PickupOf map[int]int
	Lone     []LoneDropoff
	// Onboard seats held by lone dropoffs.
	OnboardPassengers int
	OnboardADA        int
}

type rideNodes struct {
	pickup, dropoff int
	passengers, ada int
}

// GroupPickupDeliveries pairs the pickup and dropoff nodes of every action in
// stops. When only is not nil, actions outside it are ignored.
func GroupPickupDeliveries(stops model.Route, only map[model.ActionID]bool) Grouping {
	var order []model.ActionID
	byID := make(map[model.ActionID]*rideNodes)
	for i, s := range stops {
		if s.Action.IsZero() {
			continue
		}
		if s.Type != model.StopPickup && s.Type != model.StopDropoff {
			continue
		}
		if only != nil && !only[s.Action] {
			continue
		}
		rn, ok := byID[s.Action]
		if !ok {
			rn = &rideNodes{pickup: -1, dropoff: -1}
			byID[s.Action] = rn
			order = append(order, s.Action)
		}
		if s.Type == model.StopPickup {
			rn.pickup = i
		} else {
			rn.dropoff = i
		}
		rn.passengers, rn.ada = s.Passengers, s.ADAPassengers
	}

	g := Grouping{PickupOf: make(map[int]int)}
	for _, id := range order {
		rn := byID[id]
		switch {
		case rn.pickup >= 0 && rn.dropoff >= 0:
			g.Pairs = append(g.Pairs, Pair{Pickup: rn.pickup, Dropoff: rn.dropoff})
			g.PickupOf[rn.dropoff] = rn.pickup
		case rn.pickup < 0:
			g.Lone = append(g.Lone, LoneDropoff{Action: id, Node: rn.dropoff})
			g.OnboardPassengers += rn.passengers
			g.OnboardADA += rn.ada
		}
	}
	return g
}

// ActionSet collects the action ids present in r.
func ActionSet(r model.Route) map[model.ActionID]bool {
	set := make(map[model.ActionID]bool)
	for _, s := range r {
		if !s.Action.IsZero() {
			set[s.Action] = true
		}
	}
	return set
}
