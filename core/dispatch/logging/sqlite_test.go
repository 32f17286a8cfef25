package logging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridepool/core/model"
)

func TestSQLiteStore_PersistQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:audit_test.db?mode=memory&cache=shared")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	now := time.Now()
	rec := LogRecord{
		Timestamp:  now,
		Kind:       KindMatch,
		RequestID:  "r1",
		DriverID:   "d1",
		Candidates: []string{"d1", "d3"},
		Outcome:    "matched",
		Route:      model.Route{{Type: model.StopPickup, Status: model.StatusWaiting, Action: model.RequestID("r1")}},
	}
	require.NoError(t, store.Append(ctx, rec))
	require.NoError(t, store.Append(ctx, LogRecord{Timestamp: now, Kind: KindRefresh, DriverID: "d2"}))

	out, err := store.Query(ctx, LogQuery{RequestID: "r1"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, model.RequestID("r1"), out[0].Route[0].Action)

	out, err = store.Query(ctx, LogQuery{DriverID: "d3"})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	out, err = store.Query(ctx, LogQuery{Kind: KindRefresh})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
