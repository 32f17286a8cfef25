// Package app wires configuration into a running dispatch service.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/ridepool/config"
	"github.com/kilianp07/ridepool/core/datamodel"
	"github.com/kilianp07/ridepool/core/dispatch"
	"github.com/kilianp07/ridepool/core/dispatch/logging"
	"github.com/kilianp07/ridepool/core/events"
	"github.com/kilianp07/ridepool/core/matrix"
	coremetrics "github.com/kilianp07/ridepool/core/metrics"
	coremon "github.com/kilianp07/ridepool/core/monitoring"
	"github.com/kilianp07/ridepool/core/solver"
	_ "github.com/kilianp07/ridepool/infra/googlemaps"
	_ "github.com/kilianp07/ridepool/infra/graphhopper"
	"github.com/kilianp07/ridepool/infra/logger"
	"github.com/kilianp07/ridepool/infra/metrics"
	"github.com/kilianp07/ridepool/infra/monitoring"
	"github.com/kilianp07/ridepool/infra/mqtt"
	"github.com/kilianp07/ridepool/infra/store"
	"github.com/kilianp07/ridepool/internal/eventbus"
)

// Service owns the pipeline and its collaborators.
type Service struct {
	Pipeline *dispatch.Pipeline

	cfg     *config.Config
	log     logger.Logger
	bus     *eventbus.TypedBus[events.Event]
	sink    coremetrics.MetricsSink
	audit   logging.LogStore
	closers []func()
}

// New creates a Service from the configuration. Close must be called to
// release the store, the audit log and the sinks.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	s := &Service{cfg: cfg, log: logger.New("service")}

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	st, err := s.openStore(ctx)
	if err != nil {
		return nil, err
	}
	provider, err := matrix.NewProvider(cfg.Matrix.Provider)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("matrix provider: %w", err)
	}
	builder := datamodel.NewBuilder(provider,
		datamodel.WithLogger(logger.New("datamodel")),
		datamodel.WithDefaultProfiles(cfg.Matrix.Profile, cfg.Matrix.FallbackProfile),
	)
	rs := solver.New(append(cfg.Solver.Options(), solver.WithLogger(logger.New("solver")))...)

	s.audit, err = logging.Open(cfg.Audit)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("audit log: %w", err)
	}
	s.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	s.bus = eventbus.NewTyped[events.Event]()

	s.Pipeline = dispatch.NewPipeline(st, builder, rs,
		dispatch.WithLogger(logger.New("dispatch")),
		dispatch.WithConfig(cfg.Dispatch),
		dispatch.WithBus(s.bus),
		dispatch.WithLogStore(s.audit),
	)
	return s, nil
}

func (s *Service) openStore(ctx context.Context) (dispatch.Store, error) {
	c := s.cfg.Store
	var st dispatch.Store
	switch c.Backend {
	case config.StorePostgres:
		pool, err := store.NewPool(ctx, c.DSN, c.MaxConns)
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgres(pool)
		s.closers = append(s.closers, pg.Close)
		st = pg
	default:
		if c.Fixtures == "" {
			st = store.NewMemory()
			break
		}
		mem, err := store.LoadFixtures(c.Fixtures)
		if err != nil {
			return nil, err
		}
		st = mem
	}
	if c.Redis.Addr != "" {
		rdb := store.NewRedis(c.Redis.Addr, c.Redis.Password, c.Redis.DB)
		s.closers = append(s.closers, func() { _ = rdb.Close() })
		st = store.NewCached(st, rdb, time.Duration(c.Redis.TTLSeconds)*time.Second, logger.New("store_cache"))
	}
	return st, nil
}

// Audit returns the audit log of the pipeline.
func (s *Service) Audit() logging.LogStore { return s.audit }

// StartCollector forwards pipeline events to the metrics sinks until ctx
// is done.
func (s *Service) StartCollector(ctx context.Context) <-chan struct{} {
	return metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("collector"))
}

// Run serves MQTT requests and the Prometheus handler until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Transport.Broker == "" {
		return errors.New("transport: broker is required to serve")
	}
	done := s.StartCollector(ctx)
	defer func() { <-done }()

	if addr := s.cfg.Metrics.ListenAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr, prometheus.DefaultGatherer, logger.New("prometheus")); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	client, err := mqtt.NewPahoClient(s.cfg.Transport)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Disconnect()
	srv := mqtt.NewServer(client, s.Pipeline, s.cfg.Transport, logger.New("mqtt_server"))
	return srv.Serve(ctx)
}

// Close releases resources held by the service.
func (s *Service) Close() {
	if s.bus != nil {
		s.bus.Close()
	}
	if s.audit != nil {
		if err := s.audit.Close(); err != nil {
			s.log.Errorf("audit close: %v", err)
		}
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	coremon.Flush(time.Duration(s.cfg.Sentry.FlushSeconds) * time.Second)
}
