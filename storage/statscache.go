package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"taskman-api/domain"
)

const statsCacheKey = "stats:tasks"

type statsSource interface {
	Statistics(ctx context.Context) (*domain.TaskStatistics, error)
}

// StatsCache wraps a TaskStore with Redis-backed caching for the statistics
// aggregate. Cache misses and Redis failures fall through to the database.
type StatsCache struct {
	*TaskStore
	base  statsSource
	redis *redis.Client
	ttl   time.Duration
}

// NewStatsCache creates a caching wrapper using the provided client and TTL.
func NewStatsCache(base *TaskStore, client *redis.Client, ttl time.Duration) *StatsCache {
	if base == nil {
		panic("storage.NewStatsCache: base store is nil")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StatsCache{TaskStore: base, base: base, redis: client, ttl: ttl}
}

func (c *StatsCache) Statistics(ctx context.Context) (*domain.TaskStatistics, error) {
	if data, err := c.redis.Get(ctx, statsCacheKey).Bytes(); err == nil {
		var cached domain.TaskStatistics
		if json.Unmarshal(data, &cached) == nil {
			return &cached, nil
		}
	}

	stats, err := c.base.Statistics(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(stats); err == nil {
		c.redis.Set(ctx, statsCacheKey, data, c.ttl)
	}
	return stats, nil
}
