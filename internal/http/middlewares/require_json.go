package middlewares

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects mutating requests whose body is not declared as JSON.
// "application/json; charset=utf-8" and friends are fine.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))

			if err != nil || mediaType != "application/json" {
				abortWithError(c, http.StatusUnsupportedMediaType,
					"unsupported_media_type", "Content-Type must be application/json")
				return
			}
		}

		c.Next()
	}
}
