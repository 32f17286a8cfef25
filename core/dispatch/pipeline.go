// Package dispatch matches ride requests to drivers and refreshes driver
// routes.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/ridepool/core/datamodel"
	"github.com/kilianp07/ridepool/core/dispatch/logging"
	"github.com/kilianp07/ridepool/core/evaluate"
	"github.com/kilianp07/ridepool/core/events"
	"github.com/kilianp07/ridepool/core/logger"
	"github.com/kilianp07/ridepool/core/model"
	"github.com/kilianp07/ridepool/core/monitoring"
	"github.com/kilianp07/ridepool/core/route"
	"github.com/kilianp07/ridepool/core/solver"
	"github.com/kilianp07/ridepool/core/trace"
	infralogger "github.com/kilianp07/ridepool/infra/logger"
	"github.com/kilianp07/ridepool/internal/eventbus"
)

// ModelBuilder builds routing models.
type ModelBuilder interface {
	Build(ctx context.Context, in datamodel.Input) (*datamodel.DataModel, error)
}

// RouteSolver orders the stops of a routing model.
type RouteSolver interface {
	Solve(ctx context.Context, dm *datamodel.DataModel) solver.Result
}

// Match is the driver selected for a request.
type Match struct {
	RequestID string `json:"request_id"`
	DriverID  string `json:"driver_id"`
	// Plan is the full route of the driver with the request inserted and
	// dwell margins applied.
	Plan     model.Route `json:"plan"`
	Profile  string      `json:"profile"`
	Degraded bool        `json:"degraded"`
	Bucket   int         `json:"bucket"`
}

// Pipeline runs the match and refresh entrypoints. It only reads from the
// store and is safe for concurrent use.
type Pipeline struct {
	store   Store
	builder ModelBuilder
	solver  RouteSolver
	log     logger.Logger
	cfg     Config
	bus     *eventbus.TypedBus[events.Event]
	audit   logging.LogStore
	now     func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithConfig overrides the dispatch settings. Unset values keep their
// defaults.
func WithConfig(c Config) Option {
	return func(p *Pipeline) {
		c.SetDefaults()
		p.cfg = c
	}
}

// WithBus publishes match, refresh and solve events on bus.
func WithBus(bus *eventbus.TypedBus[events.Event]) Option {
	return func(p *Pipeline) { p.bus = bus }
}

// WithLogStore appends an audit record for every decision.
func WithLogStore(s logging.LogStore) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.audit = s
		}
	}
}

// WithClock overrides the clock used for audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPipeline wires a pipeline over store, builder and solver.
func NewPipeline(store Store, builder ModelBuilder, rs RouteSolver, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:   store,
		builder: builder,
		solver:  rs,
		log:     infralogger.NopLogger{},
		audit:   logging.NopStore{},
		now:     time.Now,
	}
	p.cfg.SetDefaults()
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline) publish(e events.Event) {
	if p.bus != nil {
		p.bus.Publish(e)
	}
}

// matchState carries what the audit record and the event need to know
// about a match attempt.
type matchState struct {
	locationID string
	bucket     int
	candidates []string
}

// Match finds the best driver for the request. It returns ErrNoDriver
// when no bucket yields an admissible plan. Store failures and panics are
// captured and reported as ErrInternal.
func (p *Pipeline) Match(ctx context.Context, requestID string) (*Match, error) {
	start := p.now()
	span := trace.Start(p.log, "match", map[string]any{"request_id": requestID})
	var (
		st  matchState
		res *Match
	)
	err := monitoring.Guard(map[string]string{"request_id": requestID}, func() error {
		var err error
		res, err = p.match(ctx, requestID, &st)
		return err
	})
	err = p.entrypointError(err, map[string]string{"request_id": requestID, "location_id": st.locationID})
	elapsed := span.Stop(map[string]any{"matched": res != nil})

	outcome := "matched"
	switch {
	case errors.Is(err, ErrNoDriver):
		outcome = "no_driver"
	case err != nil:
		outcome = "error"
	}
	matchTotal.WithLabelValues(outcome).Inc()

	ev := events.MatchEvent{
		RequestID:  requestID,
		LocationID: st.locationID,
		Bucket:     st.bucket,
		Candidates: len(st.candidates),
		Err:        err,
		Duration:   elapsed,
		Time:       start,
	}
	rec := logging.LogRecord{
		Timestamp:  start,
		Kind:       logging.KindMatch,
		RequestID:  requestID,
		LocationID: st.locationID,
		Candidates: st.candidates,
		Bucket:     st.bucket,
		Outcome:    outcome,
		DurationMS: elapsed.Milliseconds(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if res != nil {
		ev.DriverID, ev.Profile, ev.Degraded = res.DriverID, res.Profile, res.Degraded
		rec.DriverID, rec.Profile, rec.Degraded, rec.Route = res.DriverID, res.Profile, res.Degraded, res.Plan
		if res.Degraded {
			degradedTotal.Inc()
		}
	}
	p.publish(ev)
	p.appendAudit(ctx, rec)
	return res, err
}

func (p *Pipeline) match(ctx context.Context, requestID string, st *matchState) (*Match, error) {
	req, err := p.store.Request(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("load request %s: %w", requestID, err)
	}
	st.locationID = req.LocationID
	loc, err := p.location(ctx, req.LocationID)
	if err != nil {
		return nil, err
	}
	settings, err := p.store.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings.SetDefaults()
	drivers, err := p.store.CandidateDrivers(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	drivers = underCeilings(drivers, p.cfg)

	buckets := [][]model.Driver{drivers}
	if loc.FleetEnabled {
		buckets = Buckets(drivers, req)
	}
	actions := req.Actions()
	for i, b := range buckets {
		if len(b) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, evaluated := p.matchBucket(ctx, i, b, actions, loc, settings)
		st.bucket, st.candidates = i, evaluated
		if m != nil {
			m.RequestID = requestID
			return m, nil
		}
	}
	return nil, ErrNoDriver
}

// matchBucket evaluates one bucket and returns the selected driver, or nil,
// together with the ids of the drivers solved in the time stage.
func (p *Pipeline) matchBucket(ctx context.Context, idx int, drivers []model.Driver, actions []model.Stop, loc model.LocationConfig, s model.Settings) (*Match, []string) {
	list := shortlist(drivers, s)
	span := trace.Start(p.log, "bucket", map[string]any{
		"bucket":            idx,
		"available_drivers": driverIDs(list),
	})

	if !s.SkipDistanceTSP {
		p.log.Infow("distance stage", map[string]any{"driver_count": len(list), "ride_count": meanRideCount(list)})
		cands := p.evaluateStage(ctx, stage{mode: datamodel.ModeDistance, loc: loc, actions: actions, drivers: list, bucket: idx})
		if len(cands) == 0 {
			span.Stop(map[string]any{"message": fmt.Sprintf("no drivers available from vehicle call %d", idx)})
			return nil, nil
		}
		cands = evaluate.Rank(datamodel.ModeDistance, cands, loc.CancelTime)
		list = list[:0:0]
		for _, c := range cands {
			list = append(list, c.Driver)
		}
	}
	list = list[:model.Limit(len(list), s.FinalDriverLimit)]

	p.log.Infow("time stage", map[string]any{"driver_count": len(list), "ride_count": meanRideCount(list)})
	cands := p.evaluateStage(ctx, stage{mode: datamodel.ModeTime, loc: loc, actions: actions, drivers: list, bucket: idx})
	evaluated := make([]string, 0, len(cands))
	admitted := cands[:0:0]
	for _, c := range cands {
		evaluated = append(evaluated, c.Driver.ID)
		if why := evaluate.Admit(c, loc, actions[0]); why != evaluate.Admitted {
			p.log.Debugw("driver rejected", map[string]any{"driver_id": c.Driver.ID, "reason": string(why)})
			continue
		}
		p.log.Debugw("driver admitted", map[string]any{
			"driver_id":    c.Driver.ID,
			"pickup_count": evaluate.MeanPickupCount(c.New.Stops, c.New.FullRoute),
		})
		admitted = append(admitted, c)
	}
	if len(admitted) == 0 {
		span.Stop(map[string]any{"message": fmt.Sprintf("no drivers could be assigned from vehicle call %d", idx)})
		return nil, evaluated
	}

	best := evaluate.Rank(datamodel.ModeTime, admitted, loc.CancelTime)[0]
	pickup, dropoff := p.cfg.Margins()
	m := &Match{
		DriverID: best.Driver.ID,
		Plan:     route.AddMargin(best.New.FullRoute, pickup, dropoff),
		Profile:  best.Profile,
		Degraded: best.Degraded,
		Bucket:   idx,
	}
	span.Stop(map[string]any{"message": "best driver assigned", "driver_id": m.DriverID})
	return m, evaluated
}

// location loads the location settings, falling back to defaults when the
// location is unknown.
func (p *Pipeline) location(ctx context.Context, id string) (model.LocationConfig, error) {
	loc, err := p.store.Location(ctx, id)
	if errors.Is(err, ErrLocationNotFound) {
		p.log.Warnf("location %s not found, using defaults", id)
		return model.DefaultLocationConfig(id), nil
	}
	if err != nil {
		return model.LocationConfig{}, fmt.Errorf("load location %s: %w", id, err)
	}
	loc.SetDefaults()
	return loc, nil
}

// entrypointError captures unexpected failures and hides them behind
// ErrInternal. Sentinel outcomes pass through unchanged.
func (p *Pipeline) entrypointError(err error, tags map[string]string) error {
	if err == nil || errors.Is(err, ErrNoDriver) || errors.Is(err, ErrRequestNotFound) || errors.Is(err, ErrDriverNotFound) {
		return err
	}
	var pe *monitoring.PanicError
	if !errors.As(err, &pe) {
		monitoring.Capture(err, tags, nil)
	}
	p.log.Errorf("dispatch failed: %v", err)
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

func (p *Pipeline) appendAudit(ctx context.Context, rec logging.LogRecord) {
	if err := p.audit.Append(context.WithoutCancel(ctx), rec); err != nil {
		p.log.Warnf("audit append failed: %v", err)
	}
}

func meanRideCount(drivers []model.Driver) float64 {
	if len(drivers) == 0 {
		return 0
	}
	counts := make([]float64, len(drivers))
	for i, d := range drivers {
		counts[i] = float64(d.ActiveRidesCount())
	}
	return stat.Mean(counts, nil)
}
