package datamodel

import (
	"github.com/kilianp07/ridepool/core/model"
	"github.com/kilianp07/ridepool/core/route"
)

// DropoffLimitsFor walks the completed prefix and returns, for every lone
// dropoff, how many more fixed stops its ride may visit. The budget starts
// at MaxFixedStopsPerRide when the ride is picked up and shrinks for each
// completed stop of another ride, except when that stop shares its fixed
// stop with the one before it. Limits are returned in pickup order.
func DropoffLimitsFor(prefix model.Route, lone []route.LoneDropoff) []DropoffLimit {
	if len(lone) == 0 {
		return nil
	}
	var (
		order    []model.ActionID
		limits   = make(map[model.ActionID]*DropoffLimit)
		counting = make(map[model.ActionID]bool)
		prevFS   string
	)
	for _, s := range prefix {
		if s.Type == model.StopCurrentLocation {
			continue
		}
		sameFS := s.FixedStopID != "" && s.FixedStopID == prevFS
		for _, ld := range lone {
			id := ld.Action
			if s.Type == model.StopDropoff && counting[id] && s.Action == id {
				counting[id] = false
			}
			if s.Status == model.StatusDone && counting[id] && s.Action != id && !sameFS {
				limits[id].Budget--
			}
			if s.Type == model.StopPickup && s.Action == id && limits[id] == nil {
				counting[id] = true
				limits[id] = &DropoffLimit{Action: id, Node: ld.Node, Budget: MaxFixedStopsPerRide}
				order = append(order, id)
			}
		}
		prevFS = s.FixedStopID
	}
	out := make([]DropoffLimit, 0, len(order))
	for _, id := range order {
		out = append(out, *limits[id])
	}
	return out
}

// CloseGroupsFor lists, for every dropoff, the pickups within
// ProximityRadius of it. The current location and the dropoff's own pair
// are never listed. Dropoffs without neighbours are omitted.
func CloseGroupsFor(nodes model.Route, dist [][]float64, pickupOf map[int]int) []CloseGroup {
	var out []CloseGroup
	for d, s := range nodes {
		if s.Type != model.StopDropoff {
			continue
		}
		p, ok := pickupOf[d]
		if !ok {
			p = -1
		}
		var near []int
		for j, m := range dist[d] {
			if j == 0 || j == p || j == d {
				continue
			}
			if nodes[j].Type == model.StopPickup && m <= ProximityRadius {
				near = append(near, j)
			}
		}
		if len(near) > 0 {
			out = append(out, CloseGroup{Pickup: p, Dropoff: d, Near: near})
		}
	}
	return out
}
