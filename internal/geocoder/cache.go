package geocoder

import (
	"context"
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "revgeo:"

// Place is a resolved (city, province) pair in raw provider form.
type Place struct {
	City     string `json:"city"`
	Province string `json:"province"`
}

// PlaceCache stores resolved places keyed by quantized coordinates. The cache
// must be bounded: either by capacity (LRU) or by TTL (Redis).
type PlaceCache interface {
	Get(ctx context.Context, key string) (Place, bool)
	Set(ctx context.Context, key string, p Place)
}

// LRUCache is the in-process bounded cache.
type LRUCache struct {
	lru *lru.Cache[string, Place]
}

// NewLRUCache creates a cache holding at most capacity entries.
func NewLRUCache(capacity int) (*LRUCache, error) {
	if capacity <= 0 {
		capacity = 10000
	}
	c, err := lru.New[string, Place](capacity)
	if err != nil {
		return nil, err
	}
	return &LRUCache{lru: c}, nil
}

func (c *LRUCache) Get(_ context.Context, key string) (Place, bool) {
	return c.lru.Get(key)
}

func (c *LRUCache) Set(_ context.Context, key string, p Place) {
	c.lru.Add(key, p)
}

// Len reports the current number of cached entries.
func (c *LRUCache) Len() int {
	return c.lru.Len()
}

// RedisCache is an optional shared cache tier with TTL eviction, used when
// several instances serve the same user base.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache connects to the given address; entries expire after ttl.
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Place, bool) {
	var p Place
	s, err := c.rdb.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil || s == "" {
		return p, false
	}
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return p, false
	}
	return p, true
}

func (c *RedisCache) Set(ctx context.Context, key string, p Place) {
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	// best effort: a failed write only costs a future provider call
	c.rdb.Set(ctx, redisKeyPrefix+key, b, c.ttl)
}
