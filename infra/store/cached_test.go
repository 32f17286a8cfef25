package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridepool/core/dispatch"
	"github.com/kilianp07/ridepool/core/model"
)

type mapCache struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failGet bool
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mapCache) Get(_ context.Context, key string) *redis.StringCmd {
	if m.failGet {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mapCache) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.data[key] = string(value.([]byte))
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

type countingStore struct {
	*Memory
	locations int
}

func (c *countingStore) Location(ctx context.Context, id string) (model.LocationConfig, error) {
	c.locations++
	return c.Memory.Location(ctx, id)
}

func TestCached_Location(t *testing.T) {
	mem := NewMemory()
	mem.Load(Fixtures{Locations: []model.LocationConfig{{ID: "nyc", CancelTime: 7}}})
	inner := &countingStore{Memory: mem}
	cache := newMapCache()
	c := NewCached(inner, cache, time.Minute, nil)

	for i := 0; i < 3; i++ {
		loc, err := c.Location(context.Background(), "nyc")
		require.NoError(t, err)
		assert.Equal(t, 7, loc.CancelTime)
	}
	assert.Equal(t, 1, inner.locations)
	assert.Equal(t, time.Minute, cache.ttls["ridepool:location:nyc"])
}

func TestCached_NotFoundIsNotCached(t *testing.T) {
	inner := &countingStore{Memory: NewMemory()}
	cache := newMapCache()
	c := NewCached(inner, cache, time.Minute, nil)

	_, err := c.Location(context.Background(), "nowhere")
	assert.ErrorIs(t, err, dispatch.ErrLocationNotFound)
	assert.Empty(t, cache.data)
}

func TestCached_FallsThroughOnCacheError(t *testing.T) {
	mem := NewMemory()
	mem.Load(Fixtures{Settings: &model.Settings{DriverLimitSort: model.SortIdle, InitialDriverLimit: 4, FinalDriverLimit: 2}})
	cache := newMapCache()
	cache.failGet = true
	c := NewCached(mem, cache, time.Minute, nil)

	s, err := c.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.SortIdle, s.DriverLimitSort)
	assert.Contains(t, cache.data, "ridepool:settings")
}

func TestCached_DelegatesOtherReads(t *testing.T) {
	mem := NewMemory()
	mem.PutRequest(model.Request{ID: "r1", LocationID: "nyc", Passengers: 1})
	c := NewCached(mem, newMapCache(), time.Minute, nil)

	r, err := c.Request(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "nyc", r.LocationID)
}
