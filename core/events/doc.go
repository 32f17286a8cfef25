// Package events defines the dispatch events emitted on the event bus.
//
// Available event types:
//   - MatchEvent: outcome of a request match
//   - RefreshEvent: outcome of a route refresh
//   - SolveEvent: outcome of a single routing solve
package events

// Event is implemented by every event published by the dispatch pipeline.
type Event interface {
	EventType() string
}
