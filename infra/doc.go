// Package infra contains technical adapters: the MQTT transport, ride
// stores, routing matrix providers and metrics exporters. These packages
// depend only on the interfaces defined in the core packages.
package infra
