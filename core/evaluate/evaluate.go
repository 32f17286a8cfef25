// Package evaluate scores, filters and ranks the plans computed for
// candidate drivers.
package evaluate

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/ridepool/core/datamodel"
	"github.com/kilianp07/ridepool/core/model"
	"github.com/kilianp07/ridepool/core/route"
)

// Plan is one solved route of a driver.
type Plan struct {
	// Stops starts with the current location.
	Stops model.Route `json:"stops"`
	Legs  []float64   `json:"legs"`
	// FullRoute is the completed prefix followed by Stops.
	FullRoute model.Route `json:"full_route,omitempty"`
}

// Candidate is a driver with its plan before and after inserting a
// request.
type Candidate struct {
	Driver   model.Driver `json:"driver"`
	Old      Plan         `json:"old"`
	New      Plan         `json:"new"`
	Profile  string       `json:"profile"`
	Degraded bool         `json:"degraded"`
}

// TotalTravelTime is the cost elapsed between the first and the last stop
// of plan.
func TotalTravelTime(plan model.Route) float64 {
	if len(plan) == 0 {
		return 0
	}
	return plan[len(plan)-1].Cost - plan[0].Cost
}

// PickupCounts returns, for every ride of plan, the number of other
// pickups served between its pickup and its dropoff in full.
func PickupCounts(plan, full model.Route) map[model.ActionID]int {
	g := route.GroupPickupDeliveries(full, route.ActionSet(plan))
	counts := make(map[model.ActionID]int, len(g.Pairs))
	for _, p := range g.Pairs {
		if p.Pickup > p.Dropoff {
			continue
		}
		n := 0
		for _, s := range full[p.Pickup+1 : p.Dropoff+1] {
			if s.Type == model.StopPickup && s.Status != model.StatusCancelled {
				n++
			}
		}
		counts[full[p.Pickup].Action] = n
	}
	return counts
}

// MeanPickupCount averages PickupCounts, zero when plan has no ride.
func MeanPickupCount(plan, full model.Route) float64 {
	counts := PickupCounts(plan, full)
	if len(counts) == 0 {
		return 0
	}
	xs := make([]float64, 0, len(counts))
	for _, n := range counts {
		xs = append(xs, float64(n))
	}
	return stat.Mean(xs, nil)
}

// NewRiderWait is the cost until the first stop of a pending request.
func NewRiderWait(plan model.Route) float64 {
	if len(plan) == 0 {
		return 0
	}
	for _, s := range plan {
		if s.Action.IsRequest() {
			return s.Cost - plan[0].Cost
		}
	}
	return 0
}

// ETAIncreases returns, in seconds, how much later than promised every
// pending pickup with a known initial ETA is now reached.
func ETAIncreases(plan model.Route) []float64 {
	var out []float64
	for _, s := range plan {
		if s.Type != model.StopPickup || s.Status == model.StatusCancelled {
			continue
		}
		if s.InitialETA.IsZero() || s.ETA.IsZero() {
			continue
		}
		out = append(out, s.ETA.Sub(s.InitialETA).Seconds())
	}
	return out
}

// Detour is the distance added to the old plan, or the first leg of the
// new plan when the driver had nothing planned.
func Detour(c Candidate) float64 {
	old := floats.Sum(c.Old.Legs)
	if old == 0 {
		if len(c.New.Legs) < 2 {
			return 0
		}
		return c.New.Legs[1]
	}
	return floats.Sum(c.New.Legs) - old
}

// Rank orders candidates by increasing detour. In time mode, candidates
// making the new rider wait more than cancelMinutes are moved to the end,
// sorted by increasing wait.
func Rank(mode datamodel.Mode, cands []Candidate, cancelMinutes int) []Candidate {
	out := append([]Candidate(nil), cands...)
	if len(out) < 2 {
		return out
	}
	detours := make([]float64, len(out))
	idx := make([]int, len(out))
	for i := range out {
		idx[i] = i
		detours[i] = Detour(out[i])
	}
	sort.SliceStable(idx, func(a, b int) bool { return detours[idx[a]] < detours[idx[b]] })
	ranked := make([]Candidate, len(out))
	for i, j := range idx {
		ranked[i] = out[j]
	}
	if mode != datamodel.ModeTime {
		return ranked
	}

	limit := float64(cancelMinutes * 60)
	var ok, late []Candidate
	for _, c := range ranked {
		if NewRiderWait(c.New.Stops) > limit {
			late = append(late, c)
		} else {
			ok = append(ok, c)
		}
	}
	sort.SliceStable(late, func(a, b int) bool {
		return NewRiderWait(late[a].New.Stops) < NewRiderWait(late[b].New.Stops)
	})
	return append(ok, late...)
}
