package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridepool/core/dispatch"
	"github.com/kilianp07/ridepool/core/model"
)

const fixtures = `settings:
  driver_limit_sort: idle
  initial_driver_limit: 5
  final_driver_limit: 3
locations:
  - id: nyc
    cancel_time: 12
    is_ada: true
requests:
  - id: r1
    location_id: nyc
    passengers: 2
    pickup: {lat: 40.0, lon: -73.99}
    dropoff: {lat: 40.0, lon: -73.98}
drivers:
  - id: far
    location_id: nyc
    available: true
    position: {lat: 40.0, lon: -73.90}
  - id: near
    location_id: nyc
    available: true
    position: {lat: 40.0, lon: -73.991}
    active_rides:
      - {id: h1, passengers: 1, hailed: true}
    active_route:
      - stop_type: dropoff
        status: waiting
        coordinates: {lat: 40.0, lon: -73.97}
        passengers: 1
        action: "ride:h1"
  - id: off
    location_id: nyc
    available: false
    position: {lat: 40.0, lon: -73.99}
  - id: elsewhere
    location_id: sf
    available: true
    position: {lat: 37.7, lon: -122.4}
`

func loadTestFixtures(t *testing.T) *Memory {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtures), 0o644))
	m, err := LoadFixtures(path)
	require.NoError(t, err)
	return m
}

func TestLoadFixtures(t *testing.T) {
	m := loadTestFixtures(t)
	ctx := context.Background()

	s, err := m.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SortIdle, s.DriverLimitSort)
	assert.Equal(t, 3, s.FinalDriverLimit)

	loc, err := m.Location(ctx, "nyc")
	require.NoError(t, err)
	assert.Equal(t, 12, loc.CancelTime)
	assert.True(t, loc.IsADA)

	d, err := m.DriverVehicle(ctx, "near")
	require.NoError(t, err)
	require.Len(t, d.ActiveRoute, 1)
	assert.Equal(t, model.RideID("h1"), d.ActiveRoute[0].Action)
	assert.Equal(t, model.StopDropoff, d.ActiveRoute[0].Type)
}

func TestMemory_CandidateDrivers(t *testing.T) {
	m := loadTestFixtures(t)
	ctx := context.Background()
	req, err := m.Request(ctx, "r1")
	require.NoError(t, err)

	drivers, err := m.CandidateDrivers(ctx, req)
	require.NoError(t, err)
	require.Len(t, drivers, 2)
	assert.Equal(t, "near", drivers[0].ID)
	assert.Equal(t, "far", drivers[1].ID)
	assert.Equal(t, 1, drivers[0].Capacity.HailedPassengers)
	assert.Less(t, drivers[0].PickupDistance, drivers[1].PickupDistance)

	req.LocationID = "unknown"
	drivers, err = m.CandidateDrivers(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, drivers)
}

func TestMemory_NotFound(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Request(ctx, "x")
	assert.ErrorIs(t, err, dispatch.ErrRequestNotFound)
	_, err = m.DriverVehicle(ctx, "x")
	assert.ErrorIs(t, err, dispatch.ErrDriverNotFound)
	_, err = m.Location(ctx, "x")
	assert.ErrorIs(t, err, dispatch.ErrLocationNotFound)

	s, err := m.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), s)
}

func TestMemory_DriverIsCopied(t *testing.T) {
	m := loadTestFixtures(t)
	ctx := context.Background()
	d, err := m.DriverVehicle(ctx, "near")
	require.NoError(t, err)
	d.ActiveRoute[0].Status = model.StatusDone

	again, err := m.DriverVehicle(ctx, "near")
	require.NoError(t, err)
	assert.Equal(t, model.StatusWaiting, again.ActiveRoute[0].Status)
}
