// Package cache keeps short-lived copies of dashboard list responses in Redis.
// Entries are namespaced by a generation counter; bumping it after a write makes every
// older entry unreachable at once, and the TTL reclaims them.
package cache

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config contains the connection and expiry settings
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// NewRedisClient connects to Redis and pings it. It returns nil when the server cannot
// be reached, in which case callers run without a cache.
func NewRedisClient(cfg Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("cache: redis at %s unreachable, list cache disabled: %v", cfg.Addr, err)
		client.Close()
		return nil
	}
	return client
}

// ListCache stores rendered list responses. A nil *ListCache is valid and caches nothing.
type ListCache struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// New creates a list cache on rdb. It returns nil when rdb is nil.
func New(rdb redis.Cmdable, prefix string, ttl time.Duration) *ListCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &ListCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *ListCache) generationKey() string {
	return c.prefix + ":gen"
}

func (c *ListCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Key derives the entry key for a route and raw query under the current generation
func (c *ListCache) Key(ctx context.Context, route, query string) (string, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum([]byte(route + "?" + query))
	return fmt.Sprintf("%s:%s:%x", c.prefix, strconv.FormatInt(gen, 10), sum[:]), nil
}

// Get returns the cached body under key
func (c *ListCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	body, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: get %s: %v", key, err)
		}
		return nil, false
	}
	return body, true
}

// Set stores body under key until the TTL expires
func (c *ListCache) Set(ctx context.Context, key string, body []byte) {
	if c == nil {
		return
	}
	if err := c.rdb.SetEx(ctx, key, body, c.ttl).Err(); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
}

// Invalidate moves to a new generation so that every stored list is missed
func (c *ListCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.rdb.Incr(ctx, c.generationKey()).Err(); err != nil {
		log.Printf("cache: invalidate: %v", err)
	}
}
