package engine

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a 2-tier response cache: L1 in-memory + optional L2 Redis.
// L1 is bounded; at capacity the oldest-inserted entry is evicted first
// (insertion order, not access order), which bounds memory
// deterministically. Expired entries are never returned.
//
// Cache is an explicit service object constructed once at process start
// and passed into every strategy invocation, so tests get fresh isolated
// instances.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	order      []string // insertion order of live keys
	rdb        *redis.Client
	ttl        time.Duration
	maxEntries int

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	data       []byte
	insertedAt time.Time
}

// NewCache builds a cache with the given TTL and L1 capacity.
// redisURL can be empty to disable L2.
func NewCache(redisURL string, ttl time.Duration, maxEntries int) *Cache {
	c := &Cache{
		entries:    make(map[string]*cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
			} else {
				c.rdb = rdb
				slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	return c
}

// CacheKey builds a deterministic key from an operation kind and the
// request identity (video ID for page fetches, track URL for timedtext).
func CacheKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("yt:%x", hash[:12])
}

// Get tries L1, then L2. On L2 hit, populates L1.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if time.Since(e.insertedAt) < c.ttl {
			data := e.data
			c.mu.Unlock()
			c.hits.Add(1)
			return data, true
		}
		c.removeLocked(key)
	}
	c.mu.Unlock()

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			c.hits.Add(1)
			c.store(key, data)
			return data, true
		}
	}

	c.misses.Add(1)
	return nil, false
}

// Set stores the payload in both tiers.
func (c *Cache) Set(ctx context.Context, key string, data []byte) {
	if c == nil {
		return
	}
	c.store(key, data)
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// Stats returns the hit/miss counters for metrics.
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) store(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.removeLocked(key)
	}
	if c.maxEntries > 0 {
		for len(c.entries) >= c.maxEntries {
			c.removeLocked(c.order[0])
		}
	}
	c.entries[key] = &cacheEntry{data: data, insertedAt: time.Now()}
	c.order = append(c.order, key)
}

// removeLocked drops a key from the map and the insertion queue.
func (c *Cache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
