package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recharge-service/cmd/api/di"
	ginrouter "recharge-service/internal/adapter/gin/router"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(c *di.Container, ginAddr string, l *zap.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := ginrouter.SetupRouter(c.Handlers, c.Tokens, c.UserUC, c.RateLimiter, ginrouter.Options{
		ServiceName:        c.Config.Logger.ServiceName,
		CORSAllowedOrigins: c.Config.App.CORSAllowedOrigins,
		MaxBodyBytes:       c.Config.App.MaxBodyBytes,
		SwaggerFile:        c.Config.App.SwaggerFile,
		HealthChecks:       c.HealthChecks(),
	}, l)

	l.Info("Gin REST API configured", zap.String("address", ginAddr))

	// WriteTimeout leaves room for the simulated gateway delay.
	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
