package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridepool/core/dispatch"
	"github.com/kilianp07/ridepool/core/events"
	"github.com/kilianp07/ridepool/core/model"
	coremqtt "github.com/kilianp07/ridepool/core/mqtt"
)

type fakeBroker struct {
	mu        sync.Mutex
	subs      map[string]func([]byte)
	published chan published
}

type published struct {
	topic   string
	payload []byte
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{subs: map[string]func([]byte){}, published: make(chan published, 16)}
}

func (b *fakeBroker) Subscribe(topic string, fn func([]byte)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = fn
	return nil
}

func (b *fakeBroker) Publish(topic string, payload []byte) error {
	b.published <- published{topic, payload}
	return nil
}

func (b *fakeBroker) deliver(t *testing.T, topic string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.subs[topic] != nil
	}, time.Second, 5*time.Millisecond)
	b.mu.Lock()
	fn := b.subs[topic]
	b.mu.Unlock()
	fn(data)
}

func (b *fakeBroker) next(t *testing.T) published {
	t.Helper()
	select {
	case p := <-b.published:
		return p
	case <-time.After(time.Second):
		t.Fatal("no reply published")
		return published{}
	}
}

type fakeDispatcher struct {
	match   func(string) (*dispatch.Match, error)
	refresh func(string, model.Route) (dispatch.Refreshed, error)
}

func (d fakeDispatcher) Match(_ context.Context, id string) (*dispatch.Match, error) {
	return d.match(id)
}

func (d fakeDispatcher) Refresh(_ context.Context, id string, stops model.Route) (dispatch.Refreshed, error) {
	return d.refresh(id, stops)
}

func startServer(t *testing.T, disp Dispatcher) (*fakeBroker, context.CancelFunc, <-chan error) {
	t.Helper()
	b := newFakeBroker()
	srv := NewServer(b, disp, Config{Workers: 2}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	return b, cancel, done
}

func TestServer_MatchReply(t *testing.T) {
	plan := model.Route{{Type: model.StopPickup, Status: model.StatusWaiting}}
	disp := fakeDispatcher{match: func(id string) (*dispatch.Match, error) {
		return &dispatch.Match{RequestID: id, DriverID: "d1", Plan: plan, Profile: "car"}, nil
	}}
	b, cancel, done := startServer(t, disp)
	defer func() { cancel(); <-done }()

	b.deliver(t, coremqtt.TopicMatchRequest, coremqtt.MatchRequest{CorrelationID: "c1", RequestID: "r1"})
	p := b.next(t)
	assert.Equal(t, coremqtt.TopicMatchReply, p.topic)
	var reply coremqtt.MatchReply
	require.NoError(t, json.Unmarshal(p.payload, &reply))
	assert.Equal(t, "c1", reply.CorrelationID)
	assert.Equal(t, "d1", reply.DriverID)
	assert.Equal(t, "car", reply.Profile)
	assert.Len(t, reply.Plan, 1)
	assert.Empty(t, reply.Error)
}

func TestServer_NoDriverAndErrors(t *testing.T) {
	disp := fakeDispatcher{match: func(id string) (*dispatch.Match, error) {
		if id == "busy" {
			return nil, dispatch.ErrNoDriver
		}
		return nil, errors.New("boom")
	}}
	b, cancel, done := startServer(t, disp)
	defer func() { cancel(); <-done }()

	b.deliver(t, coremqtt.TopicMatchRequest, coremqtt.MatchRequest{RequestID: "busy"})
	var reply coremqtt.MatchReply
	require.NoError(t, json.Unmarshal(b.next(t).payload, &reply))
	assert.Empty(t, reply.DriverID)
	assert.Empty(t, reply.Error)
	assert.NotEmpty(t, reply.CorrelationID)

	b.deliver(t, coremqtt.TopicMatchRequest, coremqtt.MatchRequest{CorrelationID: "c2", RequestID: "other"})
	reply = coremqtt.MatchReply{}
	require.NoError(t, json.Unmarshal(b.next(t).payload, &reply))
	assert.Equal(t, "boom", reply.Error)
}

func TestServer_BadPayloadIgnored(t *testing.T) {
	calls := 0
	disp := fakeDispatcher{match: func(string) (*dispatch.Match, error) {
		calls++
		return nil, dispatch.ErrNoDriver
	}}
	b, cancel, done := startServer(t, disp)

	b.deliver(t, coremqtt.TopicMatchRequest, map[string]string{"correlation_id": "x"})
	cancel()
	require.NoError(t, <-done)
	assert.Zero(t, calls)
	assert.Empty(t, b.published)
}

func TestServer_RefreshReply(t *testing.T) {
	disp := fakeDispatcher{refresh: func(id string, stops model.Route) (dispatch.Refreshed, error) {
		return dispatch.Refreshed{DriverID: id, Plan: stops, Outcome: events.RefreshSolved}, nil
	}}
	b, cancel, done := startServer(t, disp)
	defer func() { cancel(); <-done }()

	route := model.Route{{Type: model.StopDropoff, Status: model.StatusWaiting, Passengers: 1}}
	b.deliver(t, coremqtt.TopicRefreshRequest, coremqtt.RefreshRequest{CorrelationID: "c3", DriverID: "d1", Route: route})
	p := b.next(t)
	assert.Equal(t, coremqtt.TopicRefreshReply, p.topic)
	var reply coremqtt.RefreshReply
	require.NoError(t, json.Unmarshal(p.payload, &reply))
	assert.Equal(t, "d1", reply.DriverID)
	assert.Equal(t, "solved", reply.Outcome)
	assert.Len(t, reply.Plan, 1)
}

func TestServer_DrainsOnShutdown(t *testing.T) {
	release := make(chan struct{})
	disp := fakeDispatcher{match: func(id string) (*dispatch.Match, error) {
		<-release
		return &dispatch.Match{RequestID: id, DriverID: "d1"}, nil
	}}
	b, cancel, done := startServer(t, disp)

	b.deliver(t, coremqtt.TopicMatchRequest, coremqtt.MatchRequest{RequestID: "r1"})
	cancel()
	select {
	case <-done:
		t.Fatal("serve returned before in-flight request finished")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, coremqtt.TopicMatchReply, b.next(t).topic)
}
