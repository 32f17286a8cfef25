package trace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	msgs   []string
	fields []map[string]any
}

func (c *captureLogger) Debugf(string, ...any)         {}
func (c *captureLogger) Debugw(string, map[string]any) {}
func (c *captureLogger) Infof(string, ...any)          {}
func (c *captureLogger) Warnf(string, ...any)          {}
func (c *captureLogger) Errorf(string, ...any)         {}
func (c *captureLogger) Infow(msg string, f map[string]any) {
	c.msgs = append(c.msgs, msg)
	c.fields = append(c.fields, f)
}

func TestSpan_StartStop(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 1500 * time.Millisecond)
	}
	defer func() { now = time.Now }()

	log := &captureLogger{}
	sp := Start(log, "tsp", map[string]any{"driver_id": "d1"})
	d := sp.Stop(map[string]any{"ok": true})

	assert.Equal(t, 1500*time.Millisecond, d)
	require.Len(t, log.msgs, 2)
	assert.Equal(t, "tsp start", log.msgs[0])
	assert.Equal(t, "tsp stop", log.msgs[1])
	assert.Equal(t, log.fields[0]["tsp_id"], log.fields[1]["tsp_id"])
	assert.Equal(t, "d1", log.fields[1]["driver_id"])
	assert.Equal(t, true, log.fields[1]["ok"])
	assert.InDelta(t, 1.5, log.fields[1]["runtime"], 1e-9)
}

func TestSpan_NilLogger(t *testing.T) {
	sp := Start(nil, "noop", nil)
	assert.NotEmpty(t, sp.ID)
	assert.GreaterOrEqual(t, sp.Stop(nil), time.Duration(0))
}
