package scenarios

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/ridepool/core/datamodel"
	"github.com/kilianp07/ridepool/core/dispatch"
	"github.com/kilianp07/ridepool/core/events"
	"github.com/kilianp07/ridepool/core/solver"
	"github.com/kilianp07/ridepool/infra/logger"
	"github.com/kilianp07/ridepool/infra/metrics"
	"github.com/kilianp07/ridepool/infra/store"
	"github.com/kilianp07/ridepool/internal/eventbus"
)

// RunScenario replays the steps of sc against a pipeline over its
// fixtures and checks every expectation.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	mem := store.NewMemory()
	mem.Load(sc.Fixtures)
	bus := eventbus.NewTyped[events.Event]()
	ctx, cancel := context.WithCancel(context.Background())
	done := metrics.StartEventCollector(ctx, bus, sink, logger.NopLogger{})

	p := dispatch.NewPipeline(mem, datamodel.NewBuilder(nil), solver.New(), dispatch.WithBus(bus))

	matches := 0
	for i, st := range sc.Steps {
		if st.Match != "" {
			matches++
			m, err := p.Match(context.Background(), st.Match)
			checkMatch(t, i, st.Expect, m, err)
			continue
		}
		out, err := p.Refresh(context.Background(), st.Refresh.Driver, st.Refresh.Route)
		checkRefresh(t, i, st.Expect, out, err)
	}
	bus.Close()
	<-done
	cancel()

	got, err := testutil.GatherAndCount(reg, "ridepool_location_matches_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if matches > 0 && got == 0 {
		t.Errorf("scenario %s: no match recorded by the metrics sink", sc.Name)
	}
}

func checkMatch(t *testing.T, step int, want Expected, m *dispatch.Match, err error) {
	t.Helper()
	switch {
	case want.Error:
		if err == nil || errors.Is(err, dispatch.ErrNoDriver) {
			t.Errorf("step %d: expected an error, got %v", step, err)
		}
	case want.Driver == "":
		if !errors.Is(err, dispatch.ErrNoDriver) {
			t.Errorf("step %d: expected no driver, got %+v, %v", step, m, err)
		}
	case err != nil:
		t.Errorf("step %d: match: %v", step, err)
	case m.DriverID != want.Driver:
		t.Errorf("step %d: expected driver %s, got %s", step, want.Driver, m.DriverID)
	case want.Stops > 0 && len(m.Plan) != want.Stops:
		t.Errorf("step %d: expected %d stops, got %d", step, want.Stops, len(m.Plan))
	}
}

func checkRefresh(t *testing.T, step int, want Expected, out dispatch.Refreshed, err error) {
	t.Helper()
	switch {
	case want.Error:
		if err == nil {
			t.Errorf("step %d: expected an error", step)
		}
	case err != nil:
		t.Errorf("step %d: refresh: %v", step, err)
	case want.Outcome != "" && string(out.Outcome) != want.Outcome:
		t.Errorf("step %d: expected outcome %s, got %s", step, want.Outcome, out.Outcome)
	case want.Stops > 0 && len(out.Plan) != want.Stops:
		t.Errorf("step %d: expected %d stops, got %d", step, want.Stops, len(out.Plan))
	}
}
