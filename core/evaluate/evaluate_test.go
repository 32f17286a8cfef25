package evaluate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridepool/core/datamodel"
	"github.com/kilianp07/ridepool/core/model"
)

var t0 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func at(typ model.StopType, id model.ActionID, cost float64) model.Stop {
	return model.Stop{Type: typ, Status: model.StatusWaiting, Action: id, Cost: cost, Passengers: 1}
}

func TestTotalTravelTime(t *testing.T) {
	assert.Zero(t, TotalTravelTime(nil))
	plan := model.Route{{Cost: 100}, {Cost: 250}, {Cost: 700}}
	assert.Equal(t, 600.0, TotalTravelTime(plan))
}

func TestPickupCounts(t *testing.T) {
	a, b, c := model.RideID("a"), model.RideID("b"), model.RideID("c")
	cancelled := at(model.StopPickup, c, 0)
	cancelled.Status = model.StatusCancelled
	full := model.Route{
		at(model.StopPickup, a, 0),
		at(model.StopPickup, b, 0),
		cancelled,
		at(model.StopDropoff, a, 0),
		at(model.StopDropoff, b, 0),
	}
	plan := model.Route{model.CurrentLocation(model.Point{}), full[3], full[4]}
	counts := PickupCounts(plan, full)
	assert.Equal(t, map[model.ActionID]int{a: 1, b: 0}, counts)
	assert.InDelta(t, 0.5, MeanPickupCount(plan, full), 1e-9)
}

func TestNewRiderWait(t *testing.T) {
	plan := model.Route{
		{Type: model.StopCurrentLocation, Cost: 10},
		at(model.StopDropoff, model.RideID("a"), 70),
		at(model.StopPickup, model.RequestID("r"), 130),
	}
	assert.Equal(t, 120.0, NewRiderWait(plan))
	assert.Zero(t, NewRiderWait(plan[:2]))
}

func TestETAIncreases(t *testing.T) {
	promised := at(model.StopPickup, model.RideID("a"), 0)
	promised.InitialETA = t0
	promised.ETA = t0.Add(5 * time.Minute)
	unknown := at(model.StopPickup, model.RideID("b"), 0)
	unknown.ETA = t0
	assert.Equal(t, []float64{300}, ETAIncreases(model.Route{promised, unknown}))
}

func TestTravelTimeFilter(t *testing.T) {
	c := Candidate{New: Plan{Stops: model.Route{{Cost: 0}, {Cost: 1900}}}}
	assert.True(t, TravelTime(c, 30), "no prior plan")

	c.Old.Stops = model.Route{{Cost: 0}}
	assert.False(t, TravelTime(c, 30))
	c.New.Stops[1].Cost = 1800
	assert.True(t, TravelTime(c, 30))
}

func TestETAIncreaseFilter(t *testing.T) {
	s := at(model.StopPickup, model.RideID("a"), 0)
	s.InitialETA = t0
	s.ETA = t0.Add(15 * time.Minute)
	c := Candidate{New: Plan{Stops: model.Route{s}}}
	assert.False(t, ETAIncrease(c, 15))
	assert.True(t, ETAIncrease(c, 16))
}

func TestFixedStopCheck(t *testing.T) {
	done := func(fs string) model.Stop {
		s := at(model.StopDropoff, model.RideID("x"+fs), 0)
		s.Status, s.FixedStopID = model.StatusDone, fs
		return s
	}
	waiting := func(fs string) model.Stop {
		s := at(model.StopDropoff, model.RideID("y"+fs), 0)
		s.FixedStopID = fs
		return s
	}
	pickup := model.Stop{Type: model.StopPickup, FixedStopID: "F1"}

	tests := []struct {
		name string
		full model.Route
		want bool
	}{
		{"nothing done", model.Route{waiting("F2")}, true},
		{"last done differs", model.Route{done("F2"), waiting("F3")}, true},
		{"heading elsewhere", model.Route{done("F1"), waiting("F2")}, false},
		{"staying at the stop", model.Route{done("F1"), waiting("F1")}, true},
		{"nothing pending", model.Route{done("F1")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Candidate{Old: Plan{FullRoute: tt.full}}
			assert.Equal(t, tt.want, FixedStopCheck(c, pickup))
		})
	}
	assert.True(t, FixedStopCheck(Candidate{Old: Plan{FullRoute: model.Route{done("F1"), waiting("F2")}}}, model.Stop{}))
}

func TestAdmit(t *testing.T) {
	loc := model.DefaultLocationConfig("loc")
	c := Candidate{
		Old: Plan{Stops: model.Route{{Cost: 0}}},
		New: Plan{Stops: model.Route{{Cost: 0}, {Cost: 4000}}},
	}
	assert.Equal(t, RejectTravelTime, Admit(c, loc, model.Stop{}))
	c.New.Stops[1].Cost = 60
	assert.Equal(t, Admitted, Admit(c, loc, model.Stop{}))
}

func cand(id string, old, legs []float64, wait float64) Candidate {
	return Candidate{
		Driver: model.Driver{ID: id},
		Old:    Plan{Legs: old},
		New: Plan{
			Legs: legs,
			Stops: model.Route{
				{Type: model.StopCurrentLocation},
				at(model.StopPickup, model.RequestID("r"), wait),
			},
		},
	}
}

func ids(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Driver.ID
	}
	return out
}

func TestRank_ByDetour(t *testing.T) {
	cands := []Candidate{
		cand("a", []float64{0, 100}, []float64{0, 100, 500}, 0),
		cand("b", nil, []float64{0, 200, 300}, 0),
		cand("c", []float64{0, 100}, []float64{0, 150, 100}, 0),
		cand("d", []float64{0, 50}, []float64{0, 100, 100}, 0),
	}
	ranked := Rank(datamodel.ModeDistance, cands, 10)
	// detours: a 500, b 200, c 150, d 150
	assert.Equal(t, []string{"c", "d", "b", "a"}, ids(ranked))
	assert.Equal(t, "a", cands[0].Driver.ID)
}

func TestRank_TimeModeDemotesLateCandidates(t *testing.T) {
	cands := []Candidate{
		cand("a", nil, []float64{0, 100}, 900),
		cand("b", nil, []float64{0, 200}, 700),
		cand("c", nil, []float64{0, 300}, 60),
		cand("d", nil, []float64{0, 400}, 600),
	}
	ranked := Rank(datamodel.ModeTime, cands, 10)
	assert.Equal(t, []string{"c", "d", "b", "a"}, ids(ranked))

	ranked = Rank(datamodel.ModeDistance, cands, 10)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(ranked))
}

func TestRank_SingleCandidate(t *testing.T) {
	ranked := Rank(datamodel.ModeTime, []Candidate{cand("a", nil, nil, 9999)}, 10)
	require.Len(t, ranked, 1)
	assert.Equal(t, "a", ranked[0].Driver.ID)
}
