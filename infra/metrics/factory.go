package metrics

import (
	"fmt"

	"github.com/kilianp07/ridepool/core/factory"
	coremetrics "github.com/kilianp07/ridepool/core/metrics"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSink()
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.URL == "" || c.Bucket == "" {
			return nil, fmt.Errorf("influx sink: url and bucket are required")
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}
