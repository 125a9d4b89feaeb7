package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recharge-service/internal/domain/user"
	"recharge-service/pkg/auth"
	"recharge-service/pkg/logger"
)

const claimsKey = "auth.claims"

// RevocationChecker reports whether a token's session has been logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Auth verifies the bearer token, rejects revoked sessions and stores the
// claims on the context.
func Auth(tokens *auth.TokenManager, revocations RevocationChecker, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			logger.WithContext(c.Request.Context(), log).Debug("rejected token", zap.Error(err))
			abort(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}

		if revocations != nil {
			revoked, err := revocations.IsRevoked(c.Request.Context(), claims.SessionID())
			if err != nil {
				logger.WithContext(c.Request.Context(), log).Error("failed to check token revocation", zap.Error(err))
				abort(c, http.StatusInternalServerError, "internal_error", "An internal error occurred")
				return
			}
			if revoked {
				abort(c, http.StatusUnauthorized, "unauthorized", "session has been logged out")
				return
			}
		}

		c.Set(claimsKey, claims)
		ctx := logger.WithUser(c.Request.Context(), claims.UserID, claims.SessionID())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole rejects authenticated callers without the given role. It must
// run after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if claims.Role != role {
			abort(c, http.StatusForbidden, "forbidden", "insufficient permissions")
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Auth.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// ActorFrom returns the authenticated caller. The zero Actor is returned on
// unauthenticated routes.
func ActorFrom(c *gin.Context) user.Actor {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return user.Actor{}
	}
	return user.Actor{UserID: claims.UserID, Role: claims.Role}
}

// SetClaims stores claims on c. Tests use it to skip token parsing.
func SetClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(claimsKey, claims)
}
