package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kilianp07/ridepool/core/dispatch"
	"github.com/kilianp07/ridepool/core/model"
	"github.com/kilianp07/ridepool/infra/logger"
)

const keyPrefix = "ridepool:"

// Cache is the subset of *redis.Client used by Cached.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Cached serves location configs and settings from Redis and reads
// everything else from the wrapped store. Cache failures fall through to
// the wrapped store.
type Cached struct {
	dispatch.Store
	cache Cache
	ttl   time.Duration
	log   logger.Logger
}

// NewRedis builds a go-redis client.
func NewRedis(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

func NewCached(inner dispatch.Store, cache Cache, ttl time.Duration, log logger.Logger) *Cached {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Cached{Store: inner, cache: cache, ttl: ttl, log: log}
}

func (c *Cached) Location(ctx context.Context, id string) (model.LocationConfig, error) {
	return readThrough(ctx, c, keyPrefix+"location:"+id, func() (model.LocationConfig, error) {
		return c.Store.Location(ctx, id)
	})
}

func (c *Cached) Settings(ctx context.Context) (model.Settings, error) {
	return readThrough(ctx, c, keyPrefix+"settings", func() (model.Settings, error) {
		return c.Store.Settings(ctx)
	})
}

func readThrough[T any](ctx context.Context, c *Cached, key string, load func() (T, error)) (T, error) {
	var v T
	raw, err := c.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		c.log.Warnf("cache entry %s is corrupt", key)
	case !errors.Is(err, redis.Nil):
		c.log.Warnf("cache get %s: %v", key, err)
	}
	v, err = load()
	if err != nil {
		return v, err
	}
	if data, err := json.Marshal(v); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warnf("cache set %s: %v", key, err)
		}
	}
	return v, nil
}
