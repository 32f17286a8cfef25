package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `matrix:
  provider:
    type: graphhopper
    conf:
      url: "https://graphhopper.com/api/1"
      key: "k"
  profile: car
solver:
  timeout_seconds: 10
store:
  backend: postgres
  dsn: "postgres://localhost/ridepool"
  redis:
    addr: "localhost:6379"
transport:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  topics:
    match_request: "custom/match"
metrics:
  sinks:
    - type: "nop"
  listen_addr: ":2112"
audit:
  backend: jsonl
  path: "audit.log"
dispatch:
  workers: 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "graphhopper", cfg.Matrix.Provider.Type)
	assert.Equal(t, "k", cfg.Matrix.Provider.Conf["key"])
	assert.Equal(t, "car", cfg.Matrix.Profile)
	assert.Equal(t, "scooter", cfg.Matrix.FallbackProfile)
	assert.Equal(t, 10*time.Second, cfg.Solver.Timeout())
	assert.Equal(t, 2*time.Second, cfg.Solver.Budget())
	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 60, cfg.Store.Redis.TTLSeconds)
	assert.Equal(t, "cli", cfg.Transport.ClientID)
	assert.Equal(t, "custom/match", cfg.Transport.Topics.MatchRequest)
	assert.Equal(t, "ridepool/match/reply", cfg.Transport.Topics.MatchReply)
	require.Len(t, cfg.Metrics.Sinks, 1)
	assert.Equal(t, "nop", cfg.Metrics.Sinks[0].Type)
	assert.Equal(t, ":2112", cfg.Metrics.ListenAddr)
	assert.Equal(t, "jsonl", cfg.Audit.Backend)
	assert.Equal(t, 50, cfg.Audit.MaxSizeMB)
	assert.Equal(t, 4, cfg.Dispatch.Workers)
	assert.Equal(t, 120, cfg.Dispatch.PickupMarginSeconds)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", `{}`))
	require.NoError(t, err)
	assert.Equal(t, "euclidean", cfg.Matrix.Provider.Type)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, 30*time.Second, cfg.Solver.Timeout())
	assert.Equal(t, 10, cfg.Dispatch.Workers)
	assert.Empty(t, cfg.Audit.Backend)
	assert.Equal(t, "production", cfg.Sentry.Environment)
	assert.Equal(t, 2, cfg.Sentry.FlushSeconds)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("RP_TRANSPORT__BROKER", "tcp://broker:1883")
	t.Setenv("RP_DISPATCH__MAX_WAITING_STOPS", "3")
	cfg, err := Load(writeConfig(t, "config.yaml", "dispatch:\n  workers: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, "tcp://broker:1883", cfg.Transport.Broker)
	assert.Equal(t, 3, cfg.Dispatch.MaxWaitingStops)
	assert.Equal(t, 2, cfg.Dispatch.Workers)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown provider": "matrix:\n  provider:\n    type: osrm\n",
		"postgres no dsn":  "store:\n  backend: postgres\n",
		"audit no path":    "audit:\n  backend: sqlite\n",
		"budget > timeout": "solver:\n  timeout_seconds: 1\n  search_budget_ms: 5000\n",
		"bad qos":          "transport:\n  broker: tcp://x:1883\n  qos:\n    reply: 4\n",
		"sample rate":      "sentry:\n  traces_sample_rate: 2\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", data))
			assert.Error(t, err)
		})
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", ""))
	assert.Error(t, err)
}
