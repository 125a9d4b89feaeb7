package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelOf(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, levelOf("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, levelOf("warning"))
	assert.Equal(t, zapcore.ErrorLevel, levelOf(" error "))
	assert.Equal(t, zapcore.InfoLevel, levelOf("nonsense"))
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(Config{
		Level:       "info",
		Format:      "json",
		OutputPath:  path,
		Sampling:    true,
		Service:     "recharge-service",
		Version:     "test",
		Environment: "test",
	})
	require.NoError(t, err)
	l.Info("hello")
	assert.NoError(t, l.Sync())
	assert.FileExists(t, path)
}

func TestWithContext_AddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithUser(ctx, 42, "sess-9")
	WithContext(ctx, base).Info("scoped")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, int64(42), fields["user_id"])
	assert.Equal(t, "sess-9", fields["session_id"])

	userID, sessionID, ok := Principal(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, "sess-9", sessionID)
	assert.Equal(t, "req-1", RequestIDFrom(ctx))
}

func TestWithContext_Anonymous(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	WithContext(context.Background(), zap.New(core)).Info("plain")

	require.Equal(t, 1, logs.Len())
	assert.Empty(t, logs.All()[0].ContextMap())
	_, _, ok := Principal(context.Background())
	assert.False(t, ok)
}

func TestRequestID_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFrom(c.Request.Context()))
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.NotEmpty(t, w.Body.String())
		assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
	})

	t.Run("reuses incoming id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		r.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Body.String())
	})
}
