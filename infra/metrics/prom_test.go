package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/ridepool/core/metrics"
)

func TestPromSink_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordMatch(coremetrics.MatchResult{LocationID: "loc1", DriverID: "d1", Candidates: 3, Duration: time.Second}))
	require.NoError(t, sink.RecordMatch(coremetrics.MatchResult{LocationID: "loc1"}))
	require.NoError(t, sink.RecordRefresh(coremetrics.RefreshResult{LocationID: "loc1", Outcome: "unchanged"}))
	require.NoError(t, sink.RecordSolve(coremetrics.SolveResult{Mode: "time", OK: true, Duration: time.Millisecond}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.matches.WithLabelValues("loc1", "matched", "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.matches.WithLabelValues("loc1", "no_driver", "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.refreshes.WithLabelValues("loc1", "unchanged")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.solves))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordRefresh(coremetrics.RefreshResult{LocationID: "a", Outcome: "solved"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(second.refreshes.WithLabelValues("a", "solved")))
}
