package route

import (
	"time"

	"github.com/kilianp07/ridepool/core/model"
)

// DefaultMargin is the dwell time added for each pickup or dropoff.
const DefaultMargin = 2 * time.Minute

// AddMargin adds a cumulative dwell margin to every stop of plan. The margin
// grows once per fixed-stop group change among waiting stops, starting after
// the first waiting stop. The input is left untouched.
func AddMargin(plan model.Route, pickup, dropoff time.Duration) model.Route {
	out := plan.Clone()
	var (
		margin   time.Duration
		prevFS   string
		firstAct = true
	)
	for i := range out {
		s := out[i]
		if s.Status == model.StatusWaiting {
			sameFS := s.FixedStopID != "" && s.FixedStopID == prevFS
			if !firstAct && !sameFS {
				switch s.Type {
				case model.StopPickup:
					margin += pickup
				case model.StopDropoff:
					margin += dropoff
				}
			}
			prevFS = s.FixedStopID
			firstAct = false
		}
		out[i].Cost += margin.Seconds()
		if !out[i].ETA.IsZero() {
			out[i].ETA = out[i].ETA.Add(margin)
		}
	}
	return out
}
