package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Infow("info", map[string]any{"k": 2})
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLogger_StructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLoggerWithWriter("solver", &buf, "info")
	l.Debugf("hidden")
	l.Infow("solved", map[string]any{"driver_id": "d1", "nodes": 4})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "solver", rec["component"])
	assert.Equal(t, "d1", rec["driver_id"])
	assert.Equal(t, float64(4), rec["nodes"])
	assert.Equal(t, "solved", rec["message"])
}
