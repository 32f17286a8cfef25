// Package mqtt defines the messages exchanged with dispatch callers over
// the broker.
package mqtt

import (
	"github.com/kilianp07/ridepool/core/model"
)

// Default topics.
const (
	TopicMatchRequest   = "ridepool/match/request"
	TopicMatchReply     = "ridepool/match/reply"
	TopicRefreshRequest = "ridepool/refresh/request"
	TopicRefreshReply   = "ridepool/refresh/reply"
)

// MatchRequest asks for a driver for a stored ride request.
type MatchRequest struct {
	CorrelationID string `json:"correlation_id"`
	RequestID     string `json:"request_id"`
}

// MatchReply answers a MatchRequest. DriverID is empty when no driver is
// available; Error is set on unexpected failures.
type MatchReply struct {
	CorrelationID string      `json:"correlation_id"`
	RequestID     string      `json:"request_id"`
	DriverID      string      `json:"driver_id,omitempty"`
	Plan          model.Route `json:"plan,omitempty"`
	Profile       string      `json:"profile,omitempty"`
	Degraded      bool        `json:"degraded,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// RefreshRequest asks to reorder the route of a driver.
type RefreshRequest struct {
	CorrelationID string      `json:"correlation_id"`
	DriverID      string      `json:"driver_id"`
	Route         model.Route `json:"route"`
}

// RefreshReply answers a RefreshRequest.
type RefreshReply struct {
	CorrelationID string      `json:"correlation_id"`
	DriverID      string      `json:"driver_id"`
	Plan          model.Route `json:"plan"`
	Outcome       string      `json:"outcome,omitempty"`
	Error         string      `json:"error,omitempty"`
}
