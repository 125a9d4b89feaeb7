// Package redis connects the service to the Redis instance shared by the
// plan cache, the token denylist and the rate limiter.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	connectTimeout = 5 * time.Second
	ioTimeout      = 3 * time.Second
)

// Config holds the connection settings from the REDIS_* variables.
type Config struct {
	Addr         string // host:port
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
}

// Client is the shared go-redis client.
type Client struct {
	*redis.Client
	log *zap.Logger
}

// NewClient opens the pool and fails unless the server answers a ping
// within the connect timeout.
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  connectTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
		PoolTimeout:  ioTimeout + time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr, err)
	}

	log = log.With(zap.String("redis_addr", cfg.Addr), zap.Int("redis_db", cfg.DB))
	log.Info("redis connected", zap.Int("pool_size", cfg.PoolSize))
	return &Client{Client: rdb, log: log}, nil
}

// Ping backs the redis entry of /health.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}
	return nil
}

// Close reports pool usage and closes every connection.
func (c *Client) Close() error {
	s := c.PoolStats()
	c.log.Info("closing redis",
		zap.Uint32("hits", s.Hits),
		zap.Uint32("misses", s.Misses),
		zap.Uint32("timeouts", s.Timeouts),
	)
	return c.Client.Close()
}
