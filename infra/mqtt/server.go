package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/kilianp07/ridepool/core/dispatch"
	"github.com/kilianp07/ridepool/core/model"
	coremqtt "github.com/kilianp07/ridepool/core/mqtt"
	"github.com/kilianp07/ridepool/infra/logger"
)

// Dispatcher runs the dispatch entrypoints.
type Dispatcher interface {
	Match(ctx context.Context, requestID string) (*dispatch.Match, error)
	Refresh(ctx context.Context, driverID string, stops model.Route) (dispatch.Refreshed, error)
}

// Broker is the subset of PahoClient used by Server.
type Broker interface {
	Subscribe(topic string, fn func(payload []byte)) error
	Publish(topic string, payload []byte) error
}

// Server answers match and refresh requests received on the broker.
type Server struct {
	broker  Broker
	disp    Dispatcher
	topics  Topics
	workers int64
	sem     *semaphore.Weighted
	log     logger.Logger
}

// NewServer builds a server. Topics and workers come from cfg defaults.
func NewServer(broker Broker, disp Dispatcher, cfg Config, log logger.Logger) *Server {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Server{
		broker:  broker,
		disp:    disp,
		topics:  cfg.Topics,
		workers: int64(cfg.Workers),
		sem:     semaphore.NewWeighted(int64(cfg.Workers)),
		log:     log,
	}
}

// Serve subscribes to the request topics and blocks until ctx is done.
// In-flight requests are awaited before returning.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.broker.Subscribe(s.topics.MatchRequest, s.dispatchTo(ctx, s.handleMatch)); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.topics.MatchRequest, err)
	}
	if err := s.broker.Subscribe(s.topics.RefreshRequest, s.dispatchTo(ctx, s.handleRefresh)); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.topics.RefreshRequest, err)
	}
	s.log.Infof("serving %s and %s", s.topics.MatchRequest, s.topics.RefreshRequest)
	<-ctx.Done()
	return s.sem.Acquire(context.WithoutCancel(ctx), s.workers)
}

// dispatchTo runs fn on a copy of each payload once a worker slot frees
// up. Payloads arriving after shutdown are dropped.
func (s *Server) dispatchTo(ctx context.Context, fn func(context.Context, []byte)) func([]byte) {
	return func(payload []byte) {
		data := append([]byte(nil), payload...)
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return
		}
		go func() {
			defer s.sem.Release(1)
			fn(ctx, data)
		}()
	}
}

func (s *Server) handleMatch(ctx context.Context, payload []byte) {
	var req coremqtt.MatchRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.RequestID == "" {
		s.log.Warnf("match request: %v", errors.Join(coremqtt.ErrBadPayload, err))
		return
	}
	if req.CorrelationID == "" {
		req.CorrelationID = uuid.NewString()
	}
	reply := coremqtt.MatchReply{CorrelationID: req.CorrelationID, RequestID: req.RequestID}
	m, err := s.disp.Match(ctx, req.RequestID)
	switch {
	case err == nil:
		reply.DriverID, reply.Plan, reply.Profile, reply.Degraded = m.DriverID, m.Plan, m.Profile, m.Degraded
	case errors.Is(err, dispatch.ErrNoDriver):
	default:
		reply.Error = err.Error()
	}
	s.reply(s.topics.MatchReply, reply)
}

func (s *Server) handleRefresh(ctx context.Context, payload []byte) {
	var req coremqtt.RefreshRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.DriverID == "" {
		s.log.Warnf("refresh request: %v", errors.Join(coremqtt.ErrBadPayload, err))
		return
	}
	if req.CorrelationID == "" {
		req.CorrelationID = uuid.NewString()
	}
	reply := coremqtt.RefreshReply{CorrelationID: req.CorrelationID, DriverID: req.DriverID}
	out, err := s.disp.Refresh(ctx, req.DriverID, req.Route)
	if err != nil {
		reply.Error = err.Error()
	} else {
		reply.Plan, reply.Outcome = out.Plan, string(out.Outcome)
	}
	s.reply(s.topics.RefreshReply, reply)
}

func (s *Server) reply(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.log.Errorf("encode reply: %v", err)
		return
	}
	if err := s.broker.Publish(topic, payload); err != nil {
		s.log.Errorf("publish reply to %s: %v", topic, err)
	}
}
