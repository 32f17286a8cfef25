package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionID_Equality(t *testing.T) {
	assert.True(t, RideID("a").Equal(RideID("a")))
	assert.False(t, RideID("a").Equal(RequestID("a")))
	assert.True(t, ActionID{}.IsZero())
	assert.True(t, RequestID("r").IsRequest())

	seen := map[ActionID]int{RideID("x"): 1, RequestID("x"): 2}
	assert.Len(t, seen, 2)
}

func TestActionID_JSON(t *testing.T) {
	b, err := json.Marshal(Stop{Type: StopPickup, Action: RideID("42")})
	require.NoError(t, err)
	var s Stop
	require.NoError(t, json.Unmarshal(b, &s))
	assert.Equal(t, RideID("42"), s.Action)

	_, err = ParseActionID("trip:1")
	assert.Error(t, err)
}

func TestRequest_Actions(t *testing.T) {
	r := Request{ID: "r1", Passengers: 3, IsADA: true, PickupFixedStopID: "fs1"}
	acts := r.Actions()
	require.Len(t, acts, 2)
	assert.Equal(t, StopPickup, acts[0].Type)
	assert.Equal(t, StopDropoff, acts[1].Type)
	assert.Equal(t, 2, acts[0].Passengers)
	assert.Equal(t, 1, acts[0].ADAPassengers)
	assert.Equal(t, "fs1", acts[0].FixedStopID)
	assert.Empty(t, acts[1].FixedStopID)
	assert.Equal(t, RequestID("r1"), acts[1].Action)
	assert.Equal(t, StatusWaiting, acts[1].Status)
}

func TestCapacity_Available(t *testing.T) {
	c := Capacity{Passengers: 3, ADA: 1, HailedPassengers: 4, HailedADA: 1}
	pax, ada := c.Available()
	assert.Equal(t, 0, pax)
	assert.Equal(t, 0, ada)
	pax, ada = c.WithoutHailed().Available()
	assert.Equal(t, 3, pax)
	assert.Equal(t, 1, ada)

	hp, ha := HailedCapacity([]ActiveRide{
		{Passengers: 2, IsADA: true, Hailed: true},
		{Passengers: 3, Hailed: true},
		{Passengers: 4},
	})
	assert.Equal(t, 4, hp)
	assert.Equal(t, 1, ha)
}
