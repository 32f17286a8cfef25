package route

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridepool/core/model"
)

func stop(t model.StopType, st model.StopStatus, ride string) model.Stop {
	s := model.Stop{Type: t, Status: st}
	if ride != "" {
		s.Action = model.RideID(ride)
	}
	return s
}

func TestSortCompletedStops_StableAndIdempotent(t *testing.T) {
	r := model.Route{
		stop(model.StopPickup, model.StatusWaiting, "a"),
		stop(model.StopPickup, model.StatusDone, "b"),
		stop(model.StopDropoff, model.StatusWaiting, "a"),
		stop(model.StopPickup, model.StatusCancelled, "c"),
	}
	once := SortCompletedStops(r)
	require.Len(t, once, 4)
	assert.Equal(t, model.RideID("b"), once[0].Action)
	assert.Equal(t, model.RideID("c"), once[1].Action)
	assert.Equal(t, model.StopPickup, once[2].Type)
	assert.Equal(t, model.StopDropoff, once[3].Type)
	assert.Equal(t, once, SortCompletedStops(once))
	// input untouched
	assert.Equal(t, model.StatusWaiting, r[0].Status)
}

func TestSplitUnfulfilled(t *testing.T) {
	cur := model.CurrentLocation(model.Point{Lat: 1, Lon: 2})
	r := model.Route{
		stop(model.StopPickup, model.StatusDone, "a"),
		stop(model.StopDropoff, model.StatusWaiting, "a"),
	}
	req := model.Request{ID: "r", Passengers: 1}
	sp := SplitUnfulfilled(r, cur, req.Actions()...)
	assert.Len(t, sp.Prefix, 1)
	assert.Len(t, sp.Remaining, 2)
	assert.Equal(t, model.StopCurrentLocation, sp.Remaining[0].Type)
	assert.Len(t, sp.Solve, 4)
	assert.False(t, sp.Empty())
	assert.Equal(t, model.Route{r[0], r[1]}, sp.Join())
}

func TestSplitUnfulfilled_NothingPending(t *testing.T) {
	cur := model.CurrentLocation(model.Point{})
	r := model.Route{
		stop(model.StopPickup, model.StatusDone, "a"),
		stop(model.StopDropoff, model.StatusDone, "a"),
	}
	sp := SplitUnfulfilled(r, cur)
	assert.True(t, sp.Empty())
	assert.Nil(t, sp.Remaining)
	assert.Equal(t, r, sp.Prefix)
	assert.Equal(t, r, sp.Join())
}

func TestGroupPickupDeliveries(t *testing.T) {
	stops := model.Route{
		model.CurrentLocation(model.Point{}),
		{Type: model.StopDropoff, Status: model.StatusWaiting, Action: model.RideID("a"), Passengers: 2, ADAPassengers: 1},
		{Type: model.StopPickup, Status: model.StatusWaiting, Action: model.RideID("b"), Passengers: 1},
		{Type: model.StopDropoff, Status: model.StatusWaiting, Action: model.RideID("b"), Passengers: 1},
	}
	g := GroupPickupDeliveries(stops, nil)
	assert.Equal(t, []Pair{{Pickup: 2, Dropoff: 3}}, g.Pairs)
	assert.Equal(t, 2, g.PickupOf[3])
	require.Len(t, g.Lone, 1)
	assert.Equal(t, LoneDropoff{Action: model.RideID("a"), Node: 1}, g.Lone[0])
	assert.Equal(t, 2, g.OnboardPassengers)
	assert.Equal(t, 1, g.OnboardADA)

	only := GroupPickupDeliveries(stops, map[model.ActionID]bool{model.RideID("b"): true})
	assert.Len(t, only.Pairs, 1)
	assert.Empty(t, only.Lone)
}

func TestFixedStopsByStatus(t *testing.T) {
	r := model.Route{
		model.CurrentLocation(model.Point{}),
		{Type: model.StopPickup, Status: model.StatusDone, FixedStopID: "f1", Action: model.RideID("a")},
		{Type: model.StopPickup, Status: model.StatusDone, Action: model.RideID("b")},
		{Type: model.StopDropoff, Status: model.StatusWaiting, FixedStopID: "f2", Action: model.RideID("a")},
		{Type: model.StopDropoff, Status: model.StatusCancelled, FixedStopID: "f3"},
	}
	done, todo := FixedStopsByStatus(r)
	assert.Equal(t, []string{FixedStopKey("f1"), "ride:b"}, done)
	assert.Equal(t, []string{FixedStopKey("f2")}, todo)
}

func TestAddMargin(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	plan := model.Route{
		{Type: model.StopPickup, Status: model.StatusDone, Cost: 0},
		{Type: model.StopCurrentLocation, Status: model.StatusDone, Cost: 0, ETA: now},
		{Type: model.StopPickup, Status: model.StatusWaiting, FixedStopID: "f1", Cost: 60, ETA: now.Add(time.Minute)},
		{Type: model.StopPickup, Status: model.StatusWaiting, FixedStopID: "f1", Cost: 60, ETA: now.Add(time.Minute)},
		{Type: model.StopDropoff, Status: model.StatusWaiting, FixedStopID: "f2", Cost: 300},
		{Type: model.StopDropoff, Status: model.StatusWaiting, Cost: 400},
	}
	out := AddMargin(plan, DefaultMargin, DefaultMargin)
	want := []float64{0, 0, 60, 60, 420, 640}
	for i := range out {
		assert.InDelta(t, want[i], out[i].Cost, 1e-9, "stop %d", i)
		assert.GreaterOrEqual(t, out[i].Cost, plan[i].Cost)
	}
	assert.Equal(t, now.Add(time.Minute), out[3].ETA)
	assert.True(t, out[4].ETA.IsZero())
	assert.Equal(t, float64(300), plan[4].Cost)
}
