package metrics

import (
	"context"

	"github.com/kilianp07/ridepool/core/events"
	coremetrics "github.com/kilianp07/ridepool/core/metrics"
	"github.com/kilianp07/ridepool/infra/logger"
	"github.com/kilianp07/ridepool/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards dispatch
// events to sink. It stops when the context is canceled or the bus is
// closed. The returned channel is closed once the collector has stopped.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("metrics sink: %s event: %v", ev.EventType(), err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.MatchEvent:
		return sink.RecordMatch(coremetrics.MatchResult{
			RequestID:  e.RequestID,
			LocationID: e.LocationID,
			DriverID:   e.DriverID,
			Bucket:     e.Bucket,
			Candidates: e.Candidates,
			Profile:    e.Profile,
			Degraded:   e.Degraded,
			Duration:   e.Duration,
			Time:       e.Time,
		})
	case events.RefreshEvent:
		if r, ok := sink.(coremetrics.RefreshRecorder); ok {
			return r.RecordRefresh(coremetrics.RefreshResult{
				DriverID:   e.DriverID,
				LocationID: e.LocationID,
				Outcome:    string(e.Outcome),
				Attempts:   e.Attempts,
				Degraded:   e.Degraded,
				Duration:   e.Duration,
				Time:       e.Time,
			})
		}
	case events.SolveEvent:
		if r, ok := sink.(coremetrics.SolveRecorder); ok {
			return r.RecordSolve(coremetrics.SolveResult{
				LocationID: e.LocationID,
				Mode:       e.Mode,
				OK:         e.OK,
				Reason:     e.Reason,
				Retry:      e.Retry,
				Duration:   e.Duration,
			})
		}
	}
	return nil
}
