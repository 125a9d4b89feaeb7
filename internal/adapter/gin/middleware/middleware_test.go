package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"recharge-service/internal/domain/user"
	"recharge-service/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func okHandler(c *gin.Context) { c.String(http.StatusOK, "ok") }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/plans/:id", okHandler)
	return r
}

func TestRateLimiter_Redis(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{Enabled: true, RequestsPerSecond: 1, BurstCapacity: 3}, zaptest.NewLogger(t))
	now := time.Unix(1700000000, 0)
	rl.now = func() time.Time { return now }
	r := newLimitedRouter(rl)

	for i := 0; i < 3; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/plans/"+string(rune('1'+i)), nil))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/plans/1", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// one token back after a second
	now = now.Add(time.Second)
	w = serve(r, httptest.NewRequest(http.MethodGet, "/plans/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_FailOpen(t *testing.T) {
	client, mr := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{Enabled: true, RequestsPerSecond: 1, BurstCapacity: 1}, zaptest.NewLogger(t))
	r := newLimitedRouter(rl)
	mr.Close()

	for i := 0; i < 3; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/plans/1", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_LocalFallback(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimiterConfig{Enabled: true, RequestsPerSecond: 1, BurstCapacity: 2}, zaptest.NewLogger(t))
	now := time.Unix(1700000000, 0)
	rl.now = func() time.Time { return now }
	r := newLimitedRouter(rl)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/plans/1", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/plans/1", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodGet, "/plans/1", nil)).Code)
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimiterConfig{Enabled: false, RequestsPerSecond: 1, BurstCapacity: 1}, zaptest.NewLogger(t))
	r := newLimitedRouter(rl)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/plans/1", nil)).Code)
	}
}

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f fakeRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	return f.revoked[id], f.err
}

func TestAuth(t *testing.T) {
	tm := auth.NewTokenManager("middleware-secret-0123456789", time.Hour, "test")
	userToken, userClaims, err := tm.Issue(7, "asha@example.com", user.RoleUser)
	require.NoError(t, err)
	adminToken, _, err := tm.Issue(1, "admin@example.com", user.RoleAdmin)
	require.NoError(t, err)
	revokedToken, revokedClaims, err := tm.Issue(8, "ravi@example.com", user.RoleUser)
	require.NoError(t, err)

	rev := fakeRevocations{revoked: map[string]bool{revokedClaims.SessionID(): true}}
	r := gin.New()
	authed := r.Group("/", Auth(tm, rev, zaptest.NewLogger(t)))
	authed.GET("/me", func(c *gin.Context) {
		a := ActorFrom(c)
		assert.Equal(t, int64(7), a.UserID)
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		assert.Equal(t, userClaims.SessionID(), claims.SessionID())
		c.String(http.StatusOK, "ok")
	})
	authed.GET("/admin", RequireRole(user.RoleAdmin), okHandler)

	request := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return serve(r, req)
	}

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{name: "valid token", path: "/me", token: userToken, want: http.StatusOK},
		{name: "missing token", path: "/me", want: http.StatusUnauthorized},
		{name: "garbage token", path: "/me", token: "not-a-jwt", want: http.StatusUnauthorized},
		{name: "revoked session", path: "/me", token: revokedToken, want: http.StatusUnauthorized},
		{name: "admin route as user", path: "/admin", token: userToken, want: http.StatusForbidden},
		{name: "admin route as admin", path: "/admin", token: adminToken, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(tt.path, tt.token)
			assert.Equal(t, tt.want, w.Code)
			if tt.want != http.StatusOK {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}

	t.Run("revocation store error", func(t *testing.T) {
		r := gin.New()
		r.GET("/me", Auth(tm, fakeRevocations{err: errors.New("redis down")}, zaptest.NewLogger(t)), okHandler)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+userToken)
		assert.Equal(t, http.StatusInternalServerError, serve(r, req).Code)
	})
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zaptest.NewLogger(t)))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"internal_error","message":"An internal error occurred"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/x", okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeadersAndBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(), BodyLimit(8))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too large")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("short")))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	w = serve(r, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("much longer than eight bytes")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
