// Package monitoring reports dispatch faults to Sentry.
package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/ridepool/config"
	coremon "github.com/kilianp07/ridepool/core/monitoring"
)

// NewSentryMonitor initializes the Sentry SDK. An empty DSN returns the
// no-op monitor.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		ServerName:       cfg.ServerName,
		TracesSampleRate: cfg.TracesSampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, err
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("service", "ridepool")
	})
	return &sentryMonitor{flush: time.Duration(cfg.FlushSeconds) * time.Second}, nil
}

type sentryMonitor struct {
	flush time.Duration
}

// Capture sends err with its dispatch tags (request, driver, location,
// stage). Extra values land in the "dispatch" context.
func (s *sentryMonitor) Capture(err error, tags map[string]string, extra map[string]any) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		if len(extra) > 0 {
			scope.SetContext("dispatch", sentry.Context(extra))
		}
		if id, ok := tags["request_id"]; ok {
			scope.SetFingerprint([]string{"{{ default }}", tags["stage"], id})
		}
		sentry.CaptureException(err)
	})
}

func (s *sentryMonitor) Recover() {
	if r := recover(); r != nil {
		sentry.CurrentHub().Recover(r)
		sentry.Flush(s.flush)
		panic(r)
	}
}

func (s *sentryMonitor) Flush(timeout time.Duration) {
	if timeout <= 0 {
		timeout = s.flush
	}
	sentry.Flush(timeout)
}
