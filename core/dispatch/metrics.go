package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	matchTotal    *prometheus.CounterVec
	matchLatency  *prometheus.HistogramVec
	solveTotal    *prometheus.CounterVec
	refreshTotal  *prometheus.CounterVec
	degradedTotal prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.HistogramVec, *prometheus.CounterVec, *prometheus.CounterVec, prometheus.Counter) {
	match := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ridepool_match_total",
			Help: "Number of match requests by outcome",
		},
		[]string{"outcome"},
	)
	lat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ridepool_stage_duration_seconds",
			Help:    "Duration of dispatch stages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
	solve := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ridepool_solve_total",
			Help: "Number of solver runs by mode and failure reason",
		},
		[]string{"mode", "reason"},
	)
	refresh := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ridepool_refresh_total",
			Help: "Number of route refreshes by outcome",
		},
		[]string{"outcome"},
	)
	degraded := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ridepool_degraded_plans_total",
			Help: "Number of plans built on synthetic travel times",
		},
	)
	return match, lat, solve, refresh, degraded
}

func init() {
	matchTotal, matchLatency, solveTotal, refreshTotal, degradedTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(matchTotal, matchLatency, solveTotal, refreshTotal, degradedTotal)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	matchTotal, matchLatency, solveTotal, refreshTotal, degradedTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

func solveReason(r string) string {
	if r == "" {
		return "ok"
	}
	return r
}
