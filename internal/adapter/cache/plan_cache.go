package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "recharge-service/internal/domain/plan"
)

const popularPlansKey = "plans:popular"

// PlanCache defines the interface for plan caching operations.
type PlanCache interface {
	// Get retrieves a plan from cache by ID.
	// Returns nil if plan is not found in cache.
	Get(ctx context.Context, id int64) (*domain.Plan, error)

	// Set stores a plan in cache with the configured TTL.
	Set(ctx context.Context, plan *domain.Plan) error

	// GetPopular retrieves the cached list of popular plans.
	// Returns nil if the list is not cached.
	GetPopular(ctx context.Context) ([]domain.Plan, error)

	// SetPopular stores the list of popular plans with the configured TTL.
	SetPopular(ctx context.Context, plans []domain.Plan) error

	// Invalidate removes the given plans and the popular list from cache.
	Invalidate(ctx context.Context, ids ...int64) error
}

// RedisPlanCache implements PlanCache using Redis as the backing store.
type RedisPlanCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisPlanCache creates a new Redis-backed plan cache.
func NewRedisPlanCache(client *redis.Client, ttl time.Duration, log *zap.Logger) PlanCache {
	return &RedisPlanCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func planKey(id int64) string {
	return fmt.Sprintf("plan:%d", id)
}

// Get retrieves a plan from Redis cache.
func (c *RedisPlanCache) Get(ctx context.Context, id int64) (*domain.Plan, error) {
	data, err := c.client.Get(ctx, planKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.Int64("plan_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.Int64("plan_id", id), zap.Error(err))
		return nil, err
	}

	var p domain.Plan
	if err := json.Unmarshal(data, &p); err != nil {
		c.log.Error("failed to unmarshal cached plan", zap.Int64("plan_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.Int64("plan_id", id))
	return &p, nil
}

// Set stores a plan in Redis cache with TTL.
func (c *RedisPlanCache) Set(ctx context.Context, p *domain.Plan) error {
	if p == nil {
		return fmt.Errorf("cannot cache nil plan")
	}

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, planKey(p.ID), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.Int64("plan_id", p.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached plan", zap.Int64("plan_id", p.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// GetPopular retrieves the popular plan list from Redis cache.
func (c *RedisPlanCache) GetPopular(ctx context.Context) ([]domain.Plan, error) {
	data, err := c.client.Get(ctx, popularPlansKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get popular plans from cache", zap.Error(err))
		return nil, err
	}

	plans := []domain.Plan{}
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// SetPopular stores the popular plan list in Redis cache with TTL.
func (c *RedisPlanCache) SetPopular(ctx context.Context, plans []domain.Plan) error {
	if plans == nil {
		plans = []domain.Plan{}
	}
	data, err := json.Marshal(plans)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, popularPlansKey, data, c.ttl).Err(); err != nil {
		c.log.Error("failed to cache popular plans", zap.Error(err))
		return err
	}
	return nil
}

// Invalidate removes plans and the popular list from Redis cache.
func (c *RedisPlanCache) Invalidate(ctx context.Context, ids ...int64) error {
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, popularPlansKey)
	for _, id := range ids {
		keys = append(keys, planKey(id))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Error("failed to invalidate plan cache", zap.Int("count", len(keys)), zap.Error(err))
		return err
	}

	c.log.Debug("invalidated plan cache", zap.Int("count", len(keys)))
	return nil
}
