package middlewares

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// RequireAdmin gates internal endpoints behind the x-admin-key header.
// NOTE: the comparison is not constant-time. This mirrors the original
// middleware contract; do not harden it silently, callers rely on the
// exact 401 body below.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		adminKey := c.GetHeader("x-admin-key")
		if adminKey == "" || adminKey != os.Getenv("ADMIN_KEY") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
