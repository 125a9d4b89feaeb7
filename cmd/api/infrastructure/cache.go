package infrastructure

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"

	"recharge-service/internal/config"
	redisclient "recharge-service/pkg/redis"
)

// NewRedisClient connects to Redis. It returns nil without error when Redis
// is disabled; callers then run without the plan cache, shared rate limits
// and the token denylist.
func NewRedisClient(cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.Redis.Enabled {
		l.Warn("redis disabled, running without cache and shared rate limits")
		return nil, nil
	}

	rdb, err := redisclient.NewClient(context.Background(), redisclient.Config{
		Addr:         net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConn,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
