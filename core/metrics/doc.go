// Package metrics defines the sinks recording dispatch outcomes. Sinks like
// PromSink and InfluxSink live in infra/metrics and register themselves in
// the factory; several configured sinks are combined in a MultiSink.
package metrics
