package route

import "github.com/kilianp07/ridepool/core/model"

// fixedStopKey identifies the curb-side stop of s. Stops outside fixed
// stops are keyed by their ride so each counts as its own stop.
func fixedStopKey(s model.Stop) (string, bool) {
	if s.FixedStopID != "" {
		return "fs:" + s.FixedStopID, true
	}
	if s.Action.Kind == model.KindRide && s.Action.Value != "" {
		return s.Action.String(), true
	}
	return "", false
}

// FixedStopsByStatus lists the fixed stops already served and those still
// waiting, in route order.
func FixedStopsByStatus(r model.Route) (completed, pending []string) {
	for _, s := range r {
		if s.Type == model.StopCurrentLocation {
			continue
		}
		key, ok := fixedStopKey(s)
		if !ok {
			continue
		}
		switch s.Status {
		case model.StatusDone:
			completed = append(completed, key)
		case model.StatusWaiting:
			pending = append(pending, key)
		}
	}
	return completed, pending
}

// FixedStopKey exposes the key used by FixedStopsByStatus for a fixed stop
// id.
func FixedStopKey(id string) string { return "fs:" + id }
