package di

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"recharge-service/cmd/api/infrastructure"
	"recharge-service/internal/adapter/cache"
	"recharge-service/internal/adapter/db/postgres"
	"recharge-service/internal/adapter/gin/handler"
	"recharge-service/internal/adapter/gin/middleware"
	ginrouter "recharge-service/internal/adapter/gin/router"
	"recharge-service/internal/adapter/payment"
	"recharge-service/internal/adapter/repository/cached"
	"recharge-service/internal/config"
	"recharge-service/internal/domain/event"
	"recharge-service/internal/usecase/notification"
	"recharge-service/internal/usecase/plan"
	"recharge-service/internal/usecase/recharge"
	"recharge-service/internal/usecase/transaction"
	"recharge-service/internal/usecase/user"
	"recharge-service/internal/usecase/wallet"
	"recharge-service/pkg/auth"
	"recharge-service/pkg/money"
	redisclient "recharge-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client // nil when Redis is disabled
	Events      event.Publisher
	Tokens      *auth.TokenManager

	UserUC         *user.Service
	PlanUC         *plan.Service
	NotificationUC *notification.Service
	WalletUC       *wallet.Service
	RechargeUC     *recharge.Service
	TransactionUC  *transaction.Service

	RateLimiter *middleware.RateLimiter
	Handlers    ginrouter.Handlers
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	c := &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		Events:      infrastructure.NewEventPublisher(cfg, l),
		Tokens: auth.NewTokenManager(cfg.Auth.JWTSecret,
			time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute, cfg.Auth.Issuer),
	}

	// Redis-backed pieces are optional
	var (
		rc       *goredis.Client
		planC    cache.PlanCache
		denylist cache.TokenDenylist
	)
	if rdb != nil {
		rc = rdb.Client
		planC = cache.NewRedisPlanCache(rc, time.Duration(cfg.Redis.CacheTTL)*time.Second, l)
		denylist = cache.NewRedisTokenDenylist(rc, l)
	}

	// Repositories
	userRepo := postgres.NewUserRepoPG(db, l)
	sessionRepo := postgres.NewSessionRepoPG(db, l)
	planRepo := cached.NewCachedPlanRepository(postgres.NewPlanRepoPG(db, l), planC, l)
	txnRepo := postgres.NewTransactionRepoPG(db, l)
	paymentRepo := postgres.NewPaymentRepoPG(db, l)
	notificationRepo := postgres.NewNotificationRepoPG(db, l)
	txManager := postgres.NewTxManager(db)

	// Payment processors
	gateway := payment.NewSimulator("gateway", cfg.Payment.GatewaySuccessRate,
		time.Duration(cfg.Payment.GatewayDelayMillis)*time.Millisecond, l)
	operator := payment.NewSimulator("operator", cfg.Payment.OperatorSuccessRate,
		time.Duration(cfg.Payment.OperatorDelayMillis)*time.Millisecond, l)

	// Use cases
	c.UserUC = user.New(userRepo, sessionRepo, c.Tokens, denylist, c.Events, user.Options{
		InitialBalance: money.FromRupees(cfg.Wallet.InitialBalance),
		BcryptCost:     cfg.Auth.BcryptCost,
	}, l)
	c.PlanUC = plan.New(planRepo, l)
	c.NotificationUC = notification.New(notificationRepo, userRepo, l)
	c.WalletUC = wallet.New(userRepo, txnRepo, paymentRepo, txManager, gateway, c.NotificationUC, c.Events,
		wallet.Limits{Min: money.FromRupees(cfg.Wallet.TopupMin), Max: money.FromRupees(cfg.Wallet.TopupMax)}, l)
	c.RechargeUC = recharge.New(userRepo, planRepo, txnRepo, paymentRepo, txManager, operator, c.NotificationUC, c.Events, l)
	c.TransactionUC = transaction.New(txnRepo, userRepo, planRepo, l)

	c.RateLimiter = middleware.NewRateLimiter(rc, middleware.RateLimiterConfig{
		Enabled:           cfg.RateLimit.Enabled,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstCapacity:     cfg.RateLimit.BurstCapacity,
	}, l)

	c.Handlers = ginrouter.Handlers{
		Auth:         handler.NewAuthHandler(c.UserUC, l),
		User:         handler.NewUserHandler(c.UserUC, l),
		Plan:         handler.NewPlanHandler(c.PlanUC, l),
		Wallet:       handler.NewWalletHandler(c.WalletUC, l),
		Transaction:  handler.NewTransactionHandler(c.RechargeUC, c.TransactionUC, l),
		Notification: handler.NewNotificationHandler(c.NotificationUC, l),
		Admin:        handler.NewAdminHandler(c.TransactionUC, l),
	}

	return c, nil
}

// Seed loads the default plan catalog and the admin account as configured.
func (c *Container) Seed(ctx context.Context) error {
	if c.Config.Seed.Plans {
		n, err := c.PlanUC.SeedDefaults(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed plans: %w", err)
		}
		if n > 0 {
			c.Logger.Info("seeded default plans", zap.Int("count", n))
		}
	}
	if c.Config.Seed.Admin {
		if err := c.UserUC.EnsureAdmin(ctx, c.Config.Auth.AdminEmail, c.Config.Auth.AdminPassword); err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
	}
	return nil
}

// HealthChecks returns the dependency checks served at /health.
func (c *Container) HealthChecks() []ginrouter.HealthCheck {
	checks := []ginrouter.HealthCheck{{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if c.RedisClient != nil {
		checks = append(checks, ginrouter.HealthCheck{Name: "redis", Check: c.RedisClient.Ping})
	}
	return checks
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.Events != nil {
		if err := c.Events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
