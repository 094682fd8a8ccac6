package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole runs after RequireAuth: identity is established, so a missing
// role is a 403, not a 401.
func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFromContext(c)

		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}

		if !id.HasRole(required) {
			abortWithError(c, http.StatusForbidden, "forbidden", "Insufficient role for this operation")
			return
		}

		c.Next()
	}
}
