package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"recharge-service/pkg/logger"
)

// maxLocalBuckets bounds the in-process fallback; the map is reset when full.
const maxLocalBuckets = 10000

// tokenBucket refills rate tokens per second up to capacity and takes one
// token per request. State is {last_refill, tokens}.
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local requested = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	local allowed = 0
	if tokens >= requested then
		tokens = tokens - requested
		allowed = 1
	end

	redis.call('HSET', key, 'last_refill', now, 'tokens', tokens)
	redis.call('EXPIRE', key, 60)
	return allowed
`)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstCapacity     int
}

// RateLimiter limits requests per client IP and route with a token bucket.
// Buckets live in Redis so every instance shares them; without Redis each
// instance keeps its own buckets.
type RateLimiter struct {
	client *redis.Client
	config RateLimiterConfig
	log    *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// NewRateLimiter creates a rate limiter. client may be nil.
func NewRateLimiter(client *redis.Client, config RateLimiterConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		log:    log,
		now:    time.Now,
		local:  make(map[string]*rate.Limiter),
	}
}

// Middleware returns the Gin handler enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || !rl.config.Enabled {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := fmt.Sprintf("ratelimit:tb:%s:%s:%s", c.Request.Method, route, c.ClientIP())

		if !rl.allow(c, key) {
			c.Header("Retry-After", "1")
			abort(c, http.StatusTooManyRequests, "rate_limit_exceeded",
				fmt.Sprintf("Rate limit exceeded: %.2f requests/second (burst capacity: %d)", rl.config.RequestsPerSecond, rl.config.BurstCapacity))
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(c *gin.Context, key string) bool {
	if rl.client == nil {
		return rl.allowLocal(key)
	}

	now := float64(rl.now().UnixMilli()) / 1000
	allowed, err := tokenBucket.Run(c.Request.Context(), rl.client, []string{key},
		rl.config.RequestsPerSecond, rl.config.BurstCapacity, now, 1).Int64()
	if err != nil {
		// fail open
		logger.WithContext(c.Request.Context(), rl.log).Warn("rate limiter redis error, allowing request",
			zap.String("key", key), zap.Error(err))
		return true
	}
	return allowed == 1
}

func (rl *RateLimiter) allowLocal(key string) bool {
	rl.mu.Lock()
	limiter, ok := rl.local[key]
	if !ok {
		if len(rl.local) >= maxLocalBuckets {
			rl.local = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.BurstCapacity)
		rl.local[key] = limiter
	}
	rl.mu.Unlock()
	return limiter.AllowN(rl.now(), 1)
}
