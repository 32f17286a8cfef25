package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridepool/config"
	"github.com/kilianp07/ridepool/core/dispatch"
	"github.com/kilianp07/ridepool/core/dispatch/logging"
)

const fixtures = `locations:
  - id: loc1
requests:
  - id: r1
    location_id: loc1
    passengers: 1
    pickup: {lat: 40.0, lon: -73.990}
    dropoff: {lat: 40.0, lon: -73.980}
drivers:
  - id: near
    location_id: loc1
    available: true
    position: {lat: 40.0, lon: -73.991}
  - id: far
    location_id: loc1
    available: true
    position: {lat: 40.0, lon: -74.000}
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtures), 0o644))
	cfg := &config.Config{
		Store: config.StoreConfig{Fixtures: path},
		Audit: logging.Config{Backend: logging.BackendJSONL, Path: filepath.Join(dir, "audit.log")},
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestService_Match(t *testing.T) {
	dispatch.ResetMetrics(nil)
	t.Cleanup(func() { dispatch.ResetMetrics(nil) })
	svc, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer svc.Close()

	m, err := svc.Pipeline.Match(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "near", m.DriverID)
	assert.Len(t, m.Plan, 3)

	recs, err := svc.audit.Query(context.Background(), logging.LogQuery{RequestID: "r1"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "near", recs[0].DriverID)

	_, err = svc.Pipeline.Match(context.Background(), "missing")
	assert.ErrorIs(t, err, dispatch.ErrRequestNotFound)
}

func TestService_RunRequiresBroker(t *testing.T) {
	svc, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer svc.Close()
	assert.Error(t, svc.Run(context.Background()))
}

func TestService_BadFixtures(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Fixtures = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
