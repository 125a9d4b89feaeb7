package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"recharge-service/internal/adapter/gin/handler"
	"recharge-service/internal/adapter/gin/middleware"
	"recharge-service/internal/domain/user"
	"recharge-service/pkg/auth"
	"recharge-service/pkg/logger"
)

const healthTimeout = 2 * time.Second

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Plan         *handler.PlanHandler
	Wallet       *handler.WalletHandler
	Transaction  *handler.TransactionHandler
	Notification *handler.NotificationHandler
	Admin        *handler.AdminHandler
}

// HealthCheck pings one dependency for /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Options configures the router's global middleware.
type Options struct {
	ServiceName        string
	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	SwaggerFile        string // served at /swagger/doc.json when set
	HealthChecks       []HealthCheck
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	h Handlers,
	tokens *auth.TokenManager,
	revocations middleware.RevocationChecker,
	rateLimiter *middleware.RateLimiter,
	opts Options,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(logger.RequestID())
	router.Use(logger.AccessLog(log))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(opts.CORSAllowedOrigins))
	if opts.MaxBodyBytes > 0 {
		router.Use(middleware.BodyLimit(opts.MaxBodyBytes))
	}
	router.Use(rateLimiter.Middleware())

	router.GET("/health", health(opts))
	router.GET("/swagger/*any", swagger(opts.SwaggerFile))

	api := router.Group("/api")
	authed := middleware.Auth(tokens, revocations, log)
	admin := middleware.RequireRole(user.RoleAdmin)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", authed, h.Auth.Logout)
		authGroup.GET("/me", authed, h.Auth.Me)
	}

	plans := api.Group("/plans")
	{
		plans.GET("", h.Plan.ListPlans)
		plans.GET("/popular", h.Plan.PopularPlans)
		plans.GET("/operators", h.Plan.Operators)
		plans.GET("/categories", h.Plan.Categories)
		plans.GET("/:id", h.Plan.GetPlan)
		plans.POST("", authed, admin, h.Plan.CreatePlan)
		plans.PUT("/:id", authed, admin, h.Plan.UpdatePlan)
		plans.DELETE("/:id", authed, admin, h.Plan.DeletePlan)
	}

	users := api.Group("/users", authed)
	{
		users.GET("", admin, h.User.ListUsers)
		users.GET("/:id", h.User.GetUser)
		users.PUT("/:id", h.User.UpdateUser)
		users.DELETE("/:id", admin, h.User.DeleteUser)
	}

	sessions := api.Group("/userSessions", authed)
	{
		sessions.GET("", admin, h.User.ListSessions)
		sessions.POST("", h.User.TouchSession)
	}

	wallet := api.Group("/wallet", authed)
	{
		wallet.GET("", h.Wallet.Balance)
		wallet.POST("/topup", h.Wallet.Topup)
	}
	api.GET("/payments", authed, h.Wallet.ListPayments)

	txns := api.Group("/transactions", authed)
	{
		txns.POST("", h.Transaction.Recharge)
		txns.GET("", h.Transaction.ListTransactions)
		txns.GET("/summary", h.Transaction.Summary)
		txns.GET("/analytics", h.Transaction.Analytics)
		txns.GET("/:id", h.Transaction.GetTransaction)
	}

	notifications := api.Group("/notifications", authed)
	{
		notifications.GET("", h.Notification.List)
		notifications.POST("", admin, h.Notification.Send)
		notifications.POST("/read-all", h.Notification.MarkAllRead)
		notifications.PATCH("/:id/read", h.Notification.MarkRead)
		notifications.DELETE("/:id", h.Notification.Delete)
	}

	api.GET("/admin/overview", authed, admin, h.Admin.Overview)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.Envelope{Error: "not_found", Message: "route not found"})
	})

	return router
}

func health(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status, code := "healthy", http.StatusOK
		checks := make(map[string]string, len(opts.HealthChecks))
		for _, hc := range opts.HealthChecks {
			if err := hc.Check(ctx); err != nil {
				checks[hc.Name] = err.Error()
				status, code = "unhealthy", http.StatusServiceUnavailable
				continue
			}
			checks[hc.Name] = "ok"
		}

		c.JSON(code, gin.H{
			"status":  status,
			"service": opts.ServiceName,
			"checks":  checks,
		})
	}
}

// swagger serves the UI and, at /swagger/doc.json, the API document.
func swagger(file string) gin.HandlerFunc {
	ui := gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	return func(c *gin.Context) {
		if c.Param("any") == "/doc.json" {
			if file == "" {
				c.JSON(http.StatusNotFound, handler.Envelope{Error: "not_found", Message: "API document not configured"})
				return
			}
			c.File(file)
			return
		}
		ui(c)
	}
}
