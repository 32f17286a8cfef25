package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/ridepool/core/solver"
)

// SolverConfig bounds every solve.
type SolverConfig struct {
	TimeoutSeconds     int `json:"timeout_seconds"`
	SearchBudgetMillis int `json:"search_budget_ms"`
	MaxExpansions      int `json:"max_expansions"`
}

func (c *SolverConfig) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = int(solver.DefaultTimeout.Seconds())
	}
	if c.SearchBudgetMillis <= 0 {
		c.SearchBudgetMillis = int(solver.DefaultSearchBudget.Milliseconds())
	}
	if c.MaxExpansions <= 0 {
		c.MaxExpansions = solver.DefaultMaxExpansions
	}
}

// Validate rejects a search budget longer than the hard timeout.
func (c SolverConfig) Validate() error {
	if c.Budget() > c.Timeout() {
		return fmt.Errorf("solver: search budget %s exceeds timeout %s", c.Budget(), c.Timeout())
	}
	return nil
}

func (c SolverConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c SolverConfig) Budget() time.Duration {
	return time.Duration(c.SearchBudgetMillis) * time.Millisecond
}

// Options converts the settings to solver options.
func (c SolverConfig) Options() []solver.Option {
	return []solver.Option{
		solver.WithTimeout(c.Timeout()),
		solver.WithSearchBudget(c.Budget()),
		solver.WithMaxExpansions(c.MaxExpansions),
	}
}
