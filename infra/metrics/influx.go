package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/ridepool/core/metrics"
	"github.com/kilianp07/ridepool/infra/logger"
)

// InfluxSink writes dispatch outcomes to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordMatch writes one point per processed request.
func (s *InfluxSink) RecordMatch(res coremetrics.MatchResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("match_outcome").
		AddTag("location_id", res.LocationID).
		AddTag("matched", strconv.FormatBool(res.DriverID != "")).
		AddTag("component", "dispatch_pipeline").
		AddField("request_id", res.RequestID).
		AddField("driver_id", res.DriverID).
		AddField("bucket", res.Bucket).
		AddField("candidates", res.Candidates).
		AddField("profile", res.Profile).
		AddField("degraded", res.Degraded).
		AddField("duration_ms", round3(res.Duration.Seconds()*1000)).
		SetTime(res.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRefresh writes one point per route refresh.
func (s *InfluxSink) RecordRefresh(res coremetrics.RefreshResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("route_refresh").
		AddTag("location_id", res.LocationID).
		AddTag("outcome", res.Outcome).
		AddTag("component", "dispatch_pipeline").
		AddField("driver_id", res.DriverID).
		AddField("attempts", res.Attempts).
		AddField("degraded", res.Degraded).
		AddField("duration_ms", round3(res.Duration.Seconds()*1000)).
		SetTime(res.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
