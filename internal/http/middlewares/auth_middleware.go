package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/bloghub/internal/actorctx"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}

type RoleResolver interface {
	RolesByUsername(ctx context.Context, username string) ([]string, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	roles RoleResolver
}

func NewAuthMiddleware(jwt TokenVerifier, roles RoleResolver) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, roles: roles}
}

// RequireAuth establishes the caller's identity. Any failure here means
// "identity not established" and is a 401; role checks come later and fail
// with 403 instead.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid access token")
			return
		}

		// every codec failure kind folds into a 401 here
		subject, err := m.jwt.Verify(raw)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired access token")
			return
		}

		// roles come from the store, not the token, so a role change takes
		// effect on the next request instead of living inside old tokens
		roles, err := m.roles.RolesByUsername(c.Request.Context(), subject)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				abortWithError(c, http.StatusUnauthorized, "unauthorized", "Unknown token subject")
				return
			}

			if errors.Is(err, context.DeadlineExceeded) {
				abortWithError(c, http.StatusServiceUnavailable, "store_unavailable", "Could not resolve identity, retry shortly")
				return
			}

			abortWithError(c, http.StatusInternalServerError, "internal_error", "Could not resolve identity")
			return
		}

		id := actorctx.Identity{Username: subject, Roles: roles}

		c.Set(ctxIdentityKey, id)
		c.Request = c.Request.WithContext(actorctx.WithIdentity(c.Request.Context(), id))

		c.Next()
	}
}

// IdentityFromContext lets handlers read the resolved identity without
// knowing the magic key.
func IdentityFromContext(c *gin.Context) (actorctx.Identity, bool) {
	v, ok := c.Get(ctxIdentityKey)
	if !ok {
		return actorctx.Identity{}, false
	}

	id, ok := v.(actorctx.Identity)

	return id, ok && id.Username != ""
}

func abortWithError(c *gin.Context, status int, code, message string) {
	reqID, _ := c.Get(CtxRequestID)
	reqIDStr, _ := reqID.(string)

	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":      code,
			"message":   message,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"path":      c.Request.URL.Path,
			"requestId": reqIDStr,
		},
	})
}
