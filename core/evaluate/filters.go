package evaluate

import (
	"github.com/kilianp07/ridepool/core/model"
	"github.com/kilianp07/ridepool/core/route"
)

// Rejection names the filter that turned a candidate down. The zero value
// means the candidate was admitted.
type Rejection string

const (
	Admitted          Rejection = ""
	RejectTravelTime  Rejection = "travel_time"
	RejectETAIncrease Rejection = "eta_increase"
	RejectFixedStop   Rejection = "fixed_stop_check"
)

// TravelTime accepts plans served within queueMinutes. Drivers without a
// prior plan are always accepted.
func TravelTime(c Candidate, queueMinutes int) bool {
	if len(c.Old.Stops) == 0 {
		return true
	}
	return TotalTravelTime(c.New.Stops) <= float64(queueMinutes*60)
}

// ETAIncrease rejects plans delaying any promised pickup by limitMinutes
// or more.
func ETAIncrease(c Candidate, limitMinutes int) bool {
	for _, inc := range ETAIncreases(c.New.Stops) {
		if inc >= float64(limitMinutes*60) {
			return false
		}
	}
	return true
}

// FixedStopCheck rejects drivers that just left the fixed stop of the
// request pickup and are heading somewhere else.
func FixedStopCheck(c Candidate, pickup model.Stop) bool {
	if pickup.FixedStopID == "" {
		return true
	}
	completed, pending := route.FixedStopsByStatus(c.Old.FullRoute)
	if len(completed) == 0 {
		return true
	}
	last := completed[len(completed)-1]
	if last != route.FixedStopKey(pickup.FixedStopID) {
		return true
	}
	return len(pending) == 0 || pending[0] == last
}

// Admit runs the admission filters in order and reports the first
// rejection.
func Admit(c Candidate, loc model.LocationConfig, pickup model.Stop) Rejection {
	switch {
	case !TravelTime(c, loc.QueueTimeLimit):
		return RejectTravelTime
	case !ETAIncrease(c, loc.ETAIncreaseLimit):
		return RejectETAIncrease
	case !FixedStopCheck(c, pickup):
		return RejectFixedStop
	}
	return Admitted
}
