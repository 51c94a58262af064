package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "seatbook:settings:snapshot"

// Cache holds the current snapshot between reads
type Cache interface {
	Get(ctx context.Context) (*Snapshot, error)
	Set(ctx context.Context, s Snapshot) error
	Invalidate(ctx context.Context) error
}

// ErrCacheMiss is returned by Cache.Get when nothing is cached
var ErrCacheMiss = errors.New("settings cache miss")

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache caches snapshots in Redis. A nil client yields a cache that
// always misses.
func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	if client == nil {
		return noCache{}
	}
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context) (*Snapshot, error) {
	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *redisCache) Set(ctx context.Context, s Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey, data, c.ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, cacheKey).Err()
}

type noCache struct{}

func (noCache) Get(context.Context) (*Snapshot, error) { return nil, ErrCacheMiss }
func (noCache) Set(context.Context, Snapshot) error    { return nil }
func (noCache) Invalidate(context.Context) error       { return nil }
