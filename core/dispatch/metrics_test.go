package dispatch

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistration(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)
	// touch metrics so they are exported
	matchTotal.WithLabelValues("matched").Inc()
	matchLatency.WithLabelValues("time").Observe(0.1)
	solveTotal.WithLabelValues("time", solveReason("")).Inc()
	refreshTotal.WithLabelValues("solved").Inc()
	degradedTotal.Inc()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, n := range []string{
		"ridepool_match_total",
		"ridepool_stage_duration_seconds",
		"ridepool_solve_total",
		"ridepool_refresh_total",
		"ridepool_degraded_plans_total",
	} {
		assert.True(t, names[n], "metric %s not registered", n)
	}
}
