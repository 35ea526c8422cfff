package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/byndl-mvp/PoC-sub000/utils"
)

// WebSocketAuthMiddleware reads the token from the query string because
// browsers cannot set headers on websocket upgrades.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("user_type", claims.UserType)
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}
