// Package trace logs the runtime of dispatch stages as structured lines.
package trace

import (
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/ridepool/core/logger"
)

// Span measures one stage. The start line and the stop line share the
// same id field so they can be joined in log queries.
type Span struct {
	ID     string
	Label  string
	Start  time.Time
	log    logger.Logger
	fields map[string]any
}

var now = time.Now

// Start logs the beginning of a stage labelled label.
func Start(log logger.Logger, label string, fields map[string]any) *Span {
	s := &Span{ID: uuid.NewString(), Label: label, Start: now(), log: log, fields: map[string]any{}}
	for k, v := range fields {
		s.fields[k] = v
	}
	if log != nil {
		out := s.merge(nil)
		out["start"] = s.Start.UnixMilli()
		log.Infow(label+" start", out)
	}
	return s
}

// Stop logs the end of the stage and returns its runtime.
func (s *Span) Stop(fields map[string]any) time.Duration {
	end := now()
	runtime := end.Sub(s.Start)
	if s.log != nil {
		out := s.merge(fields)
		out["end"] = end.UnixMilli()
		out["runtime"] = runtime.Seconds()
		s.log.Infow(s.Label+" stop", out)
	}
	return runtime
}

func (s *Span) merge(fields map[string]any) map[string]any {
	out := make(map[string]any, len(s.fields)+len(fields)+3)
	for k, v := range s.fields {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	out[s.Label+"_id"] = s.ID
	return out
}
