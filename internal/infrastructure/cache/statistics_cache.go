package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/bibbank/fraudwatch/internal/domain/model"
)

const (
	// StatisticsKey prefixes the Redis keys holding cached summaries. Each
	// generation writes to its own key, StatisticsKey:<generation>.
	StatisticsKey = "fraudwatch:statistics"

	// GenerationKey is the Redis counter advanced by every invalidation.
	GenerationKey = "fraudwatch:statistics:gen"
)

func statisticsKey(generation uint64) string {
	return StatisticsKey + ":" + strconv.FormatUint(generation, 10)
}

// redisCmdable is the subset of *redis.Client the cache uses.
type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// RedisStatisticsCache implements port.StatisticsCache in Redis so every
// replica sees the same invalidation. Summaries live under a key versioned
// by the generation counter, so a summary computed before an invalidation
// lands on a key no reader looks at and expires with its TTL.
type RedisStatisticsCache struct {
	client redisCmdable
	ttl    time.Duration
}

// NewRedisStatisticsCache creates a Redis-backed statistics cache.
func NewRedisStatisticsCache(client redisCmdable, ttl time.Duration) *RedisStatisticsCache {
	return &RedisStatisticsCache{client: client, ttl: ttl}
}

func (c *RedisStatisticsCache) generation(ctx context.Context) (uint64, error) {
	gen, err := c.client.Get(ctx, GenerationKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis: get statistics generation: %w", err)
	}
	return gen, nil
}

// Get returns the cached statistics for the current generation, or nil on
// a miss, along with that generation.
func (c *RedisStatisticsCache) Get(ctx context.Context) (*model.Statistics, uint64, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, err
	}

	raw, err := c.client.Get(ctx, statisticsKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, nil
	}
	if err != nil {
		return nil, gen, fmt.Errorf("redis: get statistics: %w", err)
	}

	var stats model.Statistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, gen, fmt.Errorf("redis: decode statistics: %w", err)
	}
	return &stats, gen, nil
}

// Set stores stats computed under generation with the configured TTL. It
// is a no-op once the generation has moved on.
func (c *RedisStatisticsCache) Set(ctx context.Context, generation uint64, stats model.Statistics) error {
	current, err := c.generation(ctx)
	if err != nil {
		return err
	}
	if current != generation {
		return nil
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("redis: encode statistics: %w", err)
	}
	if err := c.client.Set(ctx, statisticsKey(generation), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set statistics: %w", err)
	}
	return nil
}

// Invalidate advances the generation, orphaning any cached statistics.
func (c *RedisStatisticsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, GenerationKey).Err(); err != nil {
		return fmt.Errorf("redis: invalidate statistics: %w", err)
	}
	return nil
}

// MemoryStatisticsCache implements port.StatisticsCache in process. It is
// used when REDIS_ADDR is empty.
type MemoryStatisticsCache struct {
	expires time.Time
	now     func() time.Time
	stats   *model.Statistics
	ttl     time.Duration
	gen     uint64
	mu      sync.Mutex
}

// NewMemoryStatisticsCache creates an in-process statistics cache. A zero
// ttl disables caching.
func NewMemoryStatisticsCache(ttl time.Duration) *MemoryStatisticsCache {
	return &MemoryStatisticsCache{ttl: ttl, now: time.Now}
}

// Get returns the cached statistics while they are fresh, and the current
// generation either way.
func (c *MemoryStatisticsCache) Get(_ context.Context) (*model.Statistics, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stats == nil || !c.now().Before(c.expires) {
		return nil, c.gen, nil
	}
	s := *c.stats
	return &s, c.gen, nil
}

// Set stores stats until the TTL elapses, unless an invalidation happened
// after generation was read.
func (c *MemoryStatisticsCache) Set(_ context.Context, generation uint64, stats model.Statistics) error {
	if c.ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.gen {
		return nil
	}
	c.stats = &stats
	c.expires = c.now().Add(c.ttl)
	return nil
}

// Invalidate drops the cached statistics and advances the generation.
func (c *MemoryStatisticsCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.stats = nil
	return nil
}
