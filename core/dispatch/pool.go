package dispatch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/ridepool/core/datamodel"
	"github.com/kilianp07/ridepool/core/evaluate"
	"github.com/kilianp07/ridepool/core/events"
	"github.com/kilianp07/ridepool/core/model"
	"github.com/kilianp07/ridepool/core/monitoring"
	"github.com/kilianp07/ridepool/core/route"
	"github.com/kilianp07/ridepool/core/solver"
	"github.com/kilianp07/ridepool/core/trace"
)

// stage is one concurrent evaluation of a set of drivers.
type stage struct {
	mode    datamodel.Mode
	loc     model.LocationConfig
	actions []model.Stop
	drivers []model.Driver
	bucket  int
}

// evaluateStage solves the route of every driver with the request actions
// inserted. Drivers whose route cannot be solved are left out; the order
// of the remaining candidates follows drivers.
func (p *Pipeline) evaluateStage(ctx context.Context, st stage) []evaluate.Candidate {
	span := trace.Start(p.log, "pool", map[string]any{
		"mode":    st.mode.String(),
		"bucket":  st.bucket,
		"drivers": len(st.drivers),
	})
	slots := make([]*evaluate.Candidate, len(st.drivers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, d := range st.drivers {
		i, d := i, d
		g.Go(func() error {
			tags := map[string]string{"driver_id": d.ID, "location_id": st.loc.ID}
			err := monitoring.Guard(tags, func() error {
				c, err := p.evaluateDriver(gctx, st, d)
				if err != nil {
					return err
				}
				slots[i] = c
				return nil
			})
			if err != nil {
				p.log.Warnf("driver %s skipped: %v", d.ID, err)
			}
			// worker failures never cancel the other drivers
			return nil
		})
	}
	_ = g.Wait()

	out := make([]evaluate.Candidate, 0, len(slots))
	for _, c := range slots {
		if c != nil {
			out = append(out, *c)
		}
	}
	runtime := span.Stop(map[string]any{"solved": len(out)})
	matchLatency.WithLabelValues(st.mode.String()).Observe(runtime.Seconds())
	return out
}

// evaluateDriver builds and solves one driver. A failed solve is retried
// once without the proximity and first-stop constraints; nil means the
// driver cannot take the request.
func (p *Pipeline) evaluateDriver(ctx context.Context, st stage, d model.Driver) (*evaluate.Candidate, error) {
	current := model.CurrentLocation(d.Position)
	sp := route.SplitUnfulfilled(d.ActiveRoute, current, st.actions...)
	profile, fallback := d.Profiles()
	dm, err := p.builder.Build(ctx, datamodel.Input{
		Stops:           sp.Solve,
		Mode:            st.mode,
		Prefix:          sp.Prefix,
		Location:        st.loc,
		Capacity:        d.Capacity,
		Profile:         profile,
		FallbackProfile: fallback,
	})
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	res := p.solve(ctx, dm, d.ID, st.loc.ID, false)
	if !res.OK {
		res = p.solve(ctx, dm.WithoutProximity(), d.ID, st.loc.ID, true)
	}
	if !res.OK {
		return nil, nil
	}
	prefix := sp.Prefix.Clone()
	return &evaluate.Candidate{
		Driver: d,
		Old: evaluate.Plan{
			Stops:     sp.Remaining,
			Legs:      dm.Legs(len(sp.Remaining)),
			FullRoute: d.ActiveRoute,
		},
		New: evaluate.Plan{
			Stops:     res.Plan,
			Legs:      res.Legs,
			FullRoute: append(prefix, res.Plan...),
		},
		Profile:  dm.Profile,
		Degraded: dm.Degraded,
	}, nil
}

// solve runs the solver and reports the outcome to metrics, monitoring and
// the event bus.
func (p *Pipeline) solve(ctx context.Context, dm *datamodel.DataModel, driverID, locationID string, retry bool) solver.Result {
	start := time.Now()
	res := p.solver.Solve(ctx, dm)
	elapsed := time.Since(start)
	solveTotal.WithLabelValues(dm.Mode.String(), solveReason(string(res.Reason))).Inc()
	if res.Reason == solver.ReasonTimeout || res.Reason == solver.ReasonInvalid {
		err := res.Err
		if err == nil {
			err = fmt.Errorf("solver %s", res.Reason)
		}
		monitoring.Capture(err, map[string]string{
			"location": locationID,
			"vehicle":  dm.Profile,
		}, map[string]any{"driver_id": driverID, "nodes": dm.Len(), "mode": dm.Mode.String()})
	}
	p.publish(events.SolveEvent{
		DriverID:   driverID,
		LocationID: locationID,
		Mode:       dm.Mode.String(),
		OK:         res.OK,
		Reason:     string(res.Reason),
		Retry:      retry,
		Duration:   elapsed,
	})
	return res
}
