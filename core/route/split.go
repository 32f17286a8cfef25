// Package route splits and reshapes vehicle routes around the routing solver.
package route

import "github.com/kilianp07/ridepool/core/model"

// SortCompletedStops moves done and cancelled stops in front of the pending
// ones. The relative order inside both groups is kept.
func SortCompletedStops(r model.Route) model.Route {
	out := make(model.Route, 0, len(r))
	for _, s := range r {
		if s.Completed() {
			out = append(out, s)
		}
	}
	for _, s := range r {
		if !s.Completed() {
			out = append(out, s)
		}
	}
	return out
}

// Split is a route cut at its first pending stop.
type Split struct {
	// Prefix holds the done and cancelled stops.
	Prefix model.Route
	// Remaining is the current location followed by the waiting stops, or
	// nil when nothing is pending.
	Remaining model.Route
	// Solve is the stop list handed to the solver: the current location,
	// the waiting stops and the new actions.
	Solve model.Route
}

// Empty reports whether there is nothing to plan besides the current
// location.
func (s Split) Empty() bool { return len(s.Solve) <= 1 }

// SplitUnfulfilled cuts r into its completed prefix and pending suffix and
// appends the optional new actions to the solve list.
func SplitUnfulfilled(r model.Route, current model.Stop, actions ...model.Stop) Split {
	sorted := SortCompletedStops(r)
	cut := len(sorted)
	for i, s := range sorted {
		if s.Status == model.StatusWaiting {
			cut = i
			break
		}
	}
	sp := Split{Prefix: sorted[:cut:cut]}
	suffix := sorted[cut:]
	if len(suffix) > 0 {
		sp.Remaining = append(model.Route{current}, suffix...)
	}
	sp.Solve = make(model.Route, 0, 1+len(suffix)+len(actions))
	sp.Solve = append(sp.Solve, current)
	sp.Solve = append(sp.Solve, suffix...)
	sp.Solve = append(sp.Solve, actions...)
	return sp
}

// Join returns prefix followed by the remaining stops without the current
// location, which is how an unchanged route is reported back.
func (s Split) Join() model.Route {
	out := s.Prefix.Clone()
	if len(s.Remaining) > 1 {
		out = append(out, s.Remaining[1:]...)
	}
	return out
}
