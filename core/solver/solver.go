// Package solver orders the stops of a single vehicle under pickup and
// delivery, capacity and fixed-stop constraints.
package solver

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/ridepool/core/datamodel"
	"github.com/kilianp07/ridepool/core/logger"
	"github.com/kilianp07/ridepool/core/model"
	"github.com/kilianp07/ridepool/core/trace"
	infralogger "github.com/kilianp07/ridepool/infra/logger"
)

const (
	// MaxRouteDistance caps the cumulative distance of a tour in meters.
	MaxRouteDistance = 30000

	DefaultTimeout       = 30 * time.Second
	DefaultSearchBudget  = 2 * time.Second
	DefaultMaxExpansions = 5_000_000
)

// Reason explains a failed solve.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonInfeasible Reason = "infeasible"
	ReasonTimeout    Reason = "timeout"
	ReasonNoSolution Reason = "no_solution"
	ReasonInvalid    Reason = "invalid_model"
)

// ErrInvalidModel is wrapped by Result.Err when the model is malformed.
var ErrInvalidModel = errors.New("invalid data model")

// Result is the outcome of one solve. Plan, Order and Legs are only set
// when OK is true.
type Result struct {
	OK     bool
	Reason Reason
	Err    error

	Plan  model.Route
	Order []int
	// Legs holds the distance of every leg, starting with 0 for the
	// current location.
	Legs     []float64
	Distance float64
	Profile  string

	// Complete is set when the search space was exhausted, so Plan is the
	// best tour under the model.
	Complete   bool
	Expansions int
}

// Solver runs bounded searches. The zero value is not usable; see New.
type Solver struct {
	timeout       time.Duration
	budget        time.Duration
	maxExpansions int
	now           func() time.Time
	log           logger.Logger
}

// Option configures a Solver.
type Option func(*Solver)

// WithTimeout sets the hard deadline of a solve.
func WithTimeout(d time.Duration) Option {
	return func(s *Solver) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithSearchBudget bounds the time spent improving a first tour.
func WithSearchBudget(d time.Duration) Option {
	return func(s *Solver) {
		if d > 0 {
			s.budget = d
		}
	}
}

// WithMaxExpansions bounds the number of explored partial tours.
func WithMaxExpansions(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.maxExpansions = n
		}
	}
}

// WithClock overrides the clock used for ETAs.
func WithClock(now func() time.Time) Option {
	return func(s *Solver) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the solver logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a Solver with default limits.
func New(opts ...Option) *Solver {
	s := &Solver{
		timeout:       DefaultTimeout,
		budget:        DefaultSearchBudget,
		maxExpansions: DefaultMaxExpansions,
		now:           time.Now,
		log:           infralogger.NopLogger{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Solve searches the cheapest feasible tour of dm, starting from the
// nearest-neighbour tour and improving it until the search budget, the
// expansion cap or the timeout is hit. Failures are reported through
// Result, never as a partial tour.
func (s *Solver) Solve(ctx context.Context, dm *datamodel.DataModel) Result {
	if err := validate(dm); err != nil {
		return Result{Reason: ReasonInvalid, Err: err}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	span := trace.Start(s.log, "tsp", map[string]any{"mode": dm.Mode.String(), "nodes": dm.Len()})
	now := s.now()
	sr := newSearch(dm)
	sr.ctx = ctx
	sr.budget = s.budget
	sr.maxExpansions = s.maxExpansions
	sr.clock = time.Now
	sr.run()

	res := Result{Expansions: sr.expansions, Complete: !sr.halted, Profile: dm.Profile}
	switch {
	case sr.best != nil:
		res.OK = true
		res.Order = sr.best
		res.Plan, res.Legs, res.Distance = buildPlan(dm, sr.best, now)
	case sr.timedOut:
		res.Reason = ReasonTimeout
	case sr.halted:
		res.Reason = ReasonNoSolution
	default:
		res.Reason = ReasonInfeasible
	}
	span.Stop(map[string]any{"ok": res.OK, "reason": string(res.Reason), "expansions": res.Expansions})
	return res
}

func validate(dm *datamodel.DataModel) error {
	if dm == nil || dm.Len() == 0 {
		return ErrInvalidModel
	}
	n := dm.Len()
	if len(dm.Distance) != n {
		return ErrInvalidModel
	}
	for _, row := range dm.Distance {
		if len(row) != n {
			return ErrInvalidModel
		}
	}
	if dm.Mode == datamodel.ModeTime {
		if len(dm.Time) != n {
			return ErrInvalidModel
		}
		for _, row := range dm.Time {
			if len(row) != n {
				return ErrInvalidModel
			}
		}
	}
	return nil
}

// buildPlan stamps cumulative distance, cost and ETA on the stops of
// order. ETAs are only set in time mode and share the single instant now.
func buildPlan(dm *datamodel.DataModel, order []int, now time.Time) (model.Route, []float64, float64) {
	plan := make(model.Route, len(order))
	legs := make([]float64, len(order))
	var dist, secs float64
	for k, node := range order {
		if k > 0 {
			prev := order[k-1]
			legs[k] = dm.Distance[prev][node]
			dist += legs[k]
			if dm.Mode == datamodel.ModeTime {
				secs += dm.Time[prev][node]
			}
		}
		st := dm.Nodes[node]
		st.Distance = dist
		if dm.Mode == datamodel.ModeTime {
			st.Cost = secs
			st.ETA = now.Add(time.Duration(secs * float64(time.Second)))
		} else {
			st.Cost = dist
		}
		plan[k] = st
	}
	return plan, legs, dist
}
