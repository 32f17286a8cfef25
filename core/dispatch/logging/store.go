// Package logging persists an audit trail of dispatch decisions.
package logging

import (
	"context"
	"time"

	"github.com/kilianp07/ridepool/core/model"
)

// Kind tells which entrypoint produced a record.
type Kind string

const (
	KindMatch   Kind = "match"
	KindRefresh Kind = "refresh"
)

// LogRecord captures one match or refresh decision.
type LogRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	Kind       Kind      `json:"kind"`
	RequestID  string    `json:"request_id,omitempty"`
	LocationID string    `json:"location_id,omitempty"`
	DriverID   string    `json:"driver_id,omitempty"`
	// Candidates lists the drivers evaluated by the stage that decided.
	Candidates []string `json:"candidates,omitempty"`
	Bucket     int      `json:"bucket,omitempty"`
	Outcome    string   `json:"outcome"`
	Profile    string   `json:"profile,omitempty"`
	Degraded   bool     `json:"degraded,omitempty"`
	Error      string   `json:"error,omitempty"`
	// Route is the full route returned to the caller.
	Route      model.Route `json:"route,omitempty"`
	DurationMS int64       `json:"duration_ms"`
}

// LogQuery defines filters for retrieving records.
type LogQuery struct {
	Start     time.Time
	End       time.Time
	Kind      Kind
	DriverID  string
	RequestID string
}

// Matches reports whether rec passes every filter set in q.
func (q LogQuery) Matches(rec LogRecord) bool {
	if !q.Start.IsZero() && rec.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Timestamp.After(q.End) {
		return false
	}
	if q.Kind != "" && rec.Kind != q.Kind {
		return false
	}
	if q.RequestID != "" && rec.RequestID != q.RequestID {
		return false
	}
	if q.DriverID != "" && rec.DriverID != q.DriverID {
		for _, id := range rec.Candidates {
			if id == q.DriverID {
				return true
			}
		}
		return false
	}
	return true
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// NopStore drops every record.
type NopStore struct{}

func (NopStore) Append(context.Context, LogRecord) error              { return nil }
func (NopStore) Query(context.Context, LogQuery) ([]LogRecord, error) { return nil, nil }
func (NopStore) Close() error                                         { return nil }
