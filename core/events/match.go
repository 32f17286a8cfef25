package events

import "time"

// MatchEvent is published once per processed request.
type MatchEvent struct {
	RequestID  string
	LocationID string
	// DriverID is empty when no driver could be matched.
	DriverID   string
	Bucket     int
	Candidates int
	Profile    string
	Degraded   bool
	Err        error
	Duration   time.Duration
	Time       time.Time
}

func (MatchEvent) EventType() string { return "match" }

// Matched reports whether a driver was selected.
func (e MatchEvent) Matched() bool { return e.DriverID != "" }
