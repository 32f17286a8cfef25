package events

import "time"

// RefreshOutcome tells which step of a route refresh produced the plan.
type RefreshOutcome string

const (
	RefreshEmpty          RefreshOutcome = "empty"
	RefreshSolved         RefreshOutcome = "solved"
	RefreshWithoutHailed  RefreshOutcome = "without_hailed_capacity"
	RefreshWithoutBudgets RefreshOutcome = "without_stop_budgets"
	RefreshUnchanged      RefreshOutcome = "unchanged"
)

// RefreshEvent is published once per route refresh.
type RefreshEvent struct {
	DriverID   string
	LocationID string
	Outcome    RefreshOutcome
	Attempts   int
	Profile    string
	Degraded   bool
	Duration   time.Duration
	Time       time.Time
}

func (RefreshEvent) EventType() string { return "refresh" }

// SolveEvent is published for every routing solve.
type SolveEvent struct {
	DriverID   string
	LocationID string
	Mode       string
	OK         bool
	Reason     string
	Retry      bool
	Duration   time.Duration
}

func (SolveEvent) EventType() string { return "solve" }
