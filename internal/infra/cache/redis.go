package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/config"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const statsKey = "dashboard:stats"

var _ usecase.StatsCache = (*StatsCache)(nil)

type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// StatsCache keeps the computed dashboard snapshot for a short TTL.
type StatsCache struct {
	client kv
	ttl    time.Duration
	logger *zap.Logger
}

func NewStatsCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *StatsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &StatsCache{client: client, ttl: ttl, logger: logger.Named("cache")}
}

func (c *StatsCache) GetStats(ctx context.Context) (*entity.DashboardStats, bool, error) {
	data, err := c.client.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", statsKey, err)
	}

	var stats entity.DashboardStats
	if err := json.Unmarshal(data, &stats); err != nil {
		c.logger.Warn("dropping unreadable stats entry", zap.Error(err))
		_ = c.client.Del(ctx, statsKey).Err()
		return nil, false, nil
	}
	return &stats, true, nil
}

func (c *StatsCache) SetStats(ctx context.Context, stats *entity.DashboardStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	if err := c.client.Set(ctx, statsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", statsKey, err)
	}
	return nil
}

func (c *StatsCache) InvalidateStats(ctx context.Context) error {
	if err := c.client.Del(ctx, statsKey).Err(); err != nil {
		return fmt.Errorf("del %s: %w", statsKey, err)
	}
	return nil
}
