package dispatch

import (
	"context"
	"fmt"

	"github.com/kilianp07/ridepool/core/datamodel"
	"github.com/kilianp07/ridepool/core/dispatch/logging"
	"github.com/kilianp07/ridepool/core/events"
	"github.com/kilianp07/ridepool/core/model"
	"github.com/kilianp07/ridepool/core/monitoring"
	"github.com/kilianp07/ridepool/core/route"
	"github.com/kilianp07/ridepool/core/trace"
)

// Refreshed is the reordered route of a driver.
type Refreshed struct {
	DriverID string                `json:"driver_id"`
	Plan     model.Route           `json:"plan"`
	Outcome  events.RefreshOutcome `json:"outcome"`
	Profile  string                `json:"profile,omitempty"`
	Degraded bool                  `json:"degraded,omitempty"`
}

// Refresh reorders the pending stops of a driver and recomputes their
// ETAs. When no order satisfies the constraints, even after dropping the
// hailed seat reservations and the fixed-stop budgets, the stops are
// returned unchanged.
func (p *Pipeline) Refresh(ctx context.Context, driverID string, stops model.Route) (Refreshed, error) {
	start := p.now()
	span := trace.Start(p.log, "refresh", map[string]any{"driver_id": driverID, "stops": len(stops)})
	var (
		out      Refreshed
		attempts int
		locID    string
	)
	err := monitoring.Guard(map[string]string{"driver_id": driverID}, func() error {
		var err error
		out, attempts, locID, err = p.refresh(ctx, driverID, stops)
		return err
	})
	err = p.entrypointError(err, map[string]string{"driver_id": driverID, "location_id": locID})
	elapsed := span.Stop(map[string]any{"outcome": string(out.Outcome), "attempts": attempts})

	rec := logging.LogRecord{
		Timestamp:  start,
		Kind:       logging.KindRefresh,
		LocationID: locID,
		DriverID:   driverID,
		Outcome:    string(out.Outcome),
		Profile:    out.Profile,
		Degraded:   out.Degraded,
		Route:      out.Plan,
		DurationMS: elapsed.Milliseconds(),
	}
	if err != nil {
		rec.Outcome, rec.Error = "error", err.Error()
		refreshTotal.WithLabelValues("error").Inc()
	} else {
		refreshTotal.WithLabelValues(string(out.Outcome)).Inc()
		p.publish(events.RefreshEvent{
			DriverID:   driverID,
			LocationID: locID,
			Outcome:    out.Outcome,
			Attempts:   attempts,
			Profile:    out.Profile,
			Degraded:   out.Degraded,
			Duration:   elapsed,
			Time:       start,
		})
	}
	p.appendAudit(ctx, rec)
	return out, err
}

func (p *Pipeline) refresh(ctx context.Context, driverID string, stops model.Route) (Refreshed, int, string, error) {
	d, err := p.store.DriverVehicle(ctx, driverID)
	if err != nil {
		return Refreshed{}, 0, "", fmt.Errorf("load driver %s: %w", driverID, err)
	}
	out := Refreshed{DriverID: driverID}
	sp := route.SplitUnfulfilled(stops, model.CurrentLocation(d.Position))
	if sp.Empty() {
		out.Plan, out.Outcome = sp.Prefix, events.RefreshEmpty
		return out, 0, d.LocationID, nil
	}
	loc, err := p.location(ctx, d.LocationID)
	if err != nil {
		return Refreshed{}, 0, d.LocationID, err
	}

	capacity := VehicleCapacity(d)
	profile, fallback := d.Profiles()
	dm, err := p.builder.Build(ctx, datamodel.Input{
		Stops:           sp.Solve,
		Mode:            datamodel.ModeTime,
		Prefix:          sp.Prefix,
		Location:        loc,
		Capacity:        capacity,
		Profile:         profile,
		FallbackProfile: fallback,
	})
	if err != nil {
		return Refreshed{}, 0, d.LocationID, fmt.Errorf("build model: %w", err)
	}
	out.Profile, out.Degraded = dm.Profile, dm.Degraded

	// Each rung relaxes the model of the previous one.
	ladder := []struct {
		outcome events.RefreshOutcome
		apply   func(*datamodel.DataModel) *datamodel.DataModel
		skip    bool
	}{
		{outcome: events.RefreshSolved},
		{
			outcome: events.RefreshWithoutHailed,
			apply: func(m *datamodel.DataModel) *datamodel.DataModel {
				return m.WithCapacity(capacity.WithoutHailed())
			},
			skip: capacity.HailedTotal() == 0,
		},
		{
			outcome: events.RefreshWithoutBudgets,
			apply:   (*datamodel.DataModel).WithoutDropoffLimits,
			skip:    len(dm.DropoffLimits) == 0,
		},
	}
	attempts := 0
	for i, rung := range ladder {
		if rung.skip {
			continue
		}
		if rung.apply != nil {
			dm = rung.apply(dm)
		}
		attempts++
		res := p.solve(ctx, dm, driverID, d.LocationID, i > 0)
		if res.OK {
			pickup, dropoff := p.cfg.Margins()
			full := append(sp.Prefix.Clone(), res.Plan...)
			out.Plan, out.Outcome = route.AddMargin(full, pickup, dropoff), rung.outcome
			return out, attempts, d.LocationID, nil
		}
		p.log.Infow("refresh attempt failed", map[string]any{
			"driver_id": driverID,
			"step":      string(rung.outcome),
			"reason":    string(res.Reason),
		})
	}
	out.Plan, out.Outcome = sp.Join(), events.RefreshUnchanged
	return out, attempts, d.LocationID, nil
}
