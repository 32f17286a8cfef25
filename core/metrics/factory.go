package metrics

import (
	"fmt"

	"github.com/kilianp07/ridepool/core/factory"
)

var sinks = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink makes a sink type available to NewMetricsSink.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinks.Register(name, f)
}

// NewMetricsSink builds the configured sinks. No sink yields NopSink and
// several are fanned out through a MultiSink.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	built := make([]MetricsSink, 0, len(cfgs))
	for i, c := range cfgs {
		s, err := sinks.Create(c)
		if err != nil {
			return nil, fmt.Errorf("metrics sink %d (%s): %w", i, c.Type, err)
		}
		built = append(built, s)
	}
	switch len(built) {
	case 0:
		return NopSink{}, nil
	case 1:
		return built[0], nil
	}
	return NewMultiSink(built...), nil
}
