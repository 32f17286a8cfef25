package metrics

import "time"

// MatchResult is the outcome of one request match.
type MatchResult struct {
	RequestID  string
	LocationID string
	DriverID   string
	Bucket     int
	Candidates int
	Profile    string
	Degraded   bool
	Duration   time.Duration
	Time       time.Time
}

// MetricsSink records dispatch outcomes for observability purposes.
type MetricsSink interface {
	RecordMatch(res MatchResult) error
}

// RefreshResult is the outcome of one route refresh.
type RefreshResult struct {
	DriverID   string
	LocationID string
	Outcome    string
	Attempts   int
	Degraded   bool
	Duration   time.Duration
	Time       time.Time
}

// RefreshRecorder records route refreshes.
type RefreshRecorder interface {
	RecordRefresh(res RefreshResult) error
}

// SolveResult is the outcome of a single routing solve.
type SolveResult struct {
	LocationID string
	Mode       string
	OK         bool
	Reason     string
	Retry      bool
	Duration   time.Duration
}

// SolveRecorder records routing solves.
type SolveRecorder interface {
	RecordSolve(res SolveResult) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordMatch(MatchResult) error     { return nil }
func (NopSink) RecordRefresh(RefreshResult) error { return nil }
func (NopSink) RecordSolve(SolveResult) error     { return nil }

// MultiSink fans results out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordMatch forwards the result to all sinks, returning the first error.
func (m *MultiSink) RecordMatch(res MatchResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordMatch(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordRefresh forwards the result to the sinks recording refreshes.
func (m *MultiSink) RecordRefresh(res RefreshResult) error {
	for _, s := range m.Sinks {
		if r, ok := s.(RefreshRecorder); ok {
			if err := r.RecordRefresh(res); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSolve forwards the result to the sinks recording solves.
func (m *MultiSink) RecordSolve(res SolveResult) error {
	for _, s := range m.Sinks {
		if r, ok := s.(SolveRecorder); ok {
			if err := r.RecordSolve(res); err != nil {
				return err
			}
		}
	}
	return nil
}
