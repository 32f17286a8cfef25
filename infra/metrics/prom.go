package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/ridepool/core/metrics"
)

// PromSink records dispatch outcomes per location in Prometheus metrics.
type PromSink struct {
	matches    *prometheus.CounterVec
	candidates prometheus.Histogram
	matchTime  *prometheus.HistogramVec
	refreshes  *prometheus.CounterVec
	solves     *prometheus.HistogramVec
}

// NewPromSink registers the sink metrics on the default Prometheus
// registerer. The /metrics endpoint is served separately, see
// StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered under the same name are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ridepool_location_matches_total",
			Help: "Processed requests by location and outcome",
		}, []string{"location_id", "outcome", "bucket"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ridepool_match_candidates",
			Help:    "Drivers evaluated in the deciding time stage",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		matchTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ridepool_match_duration_seconds",
			Help:    "Time spent matching a request",
			Buckets: prometheus.DefBuckets,
		}, []string{"location_id"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ridepool_location_refreshes_total",
			Help: "Route refreshes by location and outcome",
		}, []string{"location_id", "outcome"}),
		solves: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ridepool_solve_duration_seconds",
			Help:    "Runtime of single routing solves",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 30},
		}, []string{"mode", "ok", "retry"}),
	}
	var err error
	if s.matches, err = register(reg, s.matches); err != nil {
		return nil, err
	}
	if s.candidates, err = register(reg, s.candidates); err != nil {
		return nil, err
	}
	if s.matchTime, err = register(reg, s.matchTime); err != nil {
		return nil, err
	}
	if s.refreshes, err = register(reg, s.refreshes); err != nil {
		return nil, err
	}
	if s.solves, err = register(reg, s.solves); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordMatch counts the outcome and observes its duration.
func (s *PromSink) RecordMatch(res coremetrics.MatchResult) error {
	outcome := "no_driver"
	if res.DriverID != "" {
		outcome = "matched"
	}
	s.matches.WithLabelValues(res.LocationID, outcome, strconv.Itoa(res.Bucket)).Inc()
	s.candidates.Observe(float64(res.Candidates))
	s.matchTime.WithLabelValues(res.LocationID).Observe(res.Duration.Seconds())
	return nil
}

// RecordRefresh counts the refresh outcome.
func (s *PromSink) RecordRefresh(res coremetrics.RefreshResult) error {
	s.refreshes.WithLabelValues(res.LocationID, res.Outcome).Inc()
	return nil
}

// RecordSolve observes the solve runtime.
func (s *PromSink) RecordSolve(res coremetrics.SolveResult) error {
	s.solves.WithLabelValues(res.Mode, strconv.FormatBool(res.OK), strconv.FormatBool(res.Retry)).Observe(res.Duration.Seconds())
	return nil
}
