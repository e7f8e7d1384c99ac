package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"clinicore/utils"

	"github.com/gin-gonic/gin"
)

// ContextStaffID is the gin context key carrying the authenticated staff ID.
const ContextStaffID = "staffID"

// JWTAuthMiddleware validates the bearer token and checks the auth session
// cache, so sign-out and revocation take effect immediately.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization", "missing bearer token")
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		staffID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid or expired token", err.Error())
			c.Abort()
			return
		}

		cache := utils.GetAuthCacheClient()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		key := utils.AuthCachePrefix + utils.HashToken(tokenString)
		if _, err := cache.Get(ctx, key).Result(); err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "Session expired, please sign in again", "no active auth session")
			c.Abort()
			return
		}

		c.Set(ContextStaffID, staffID)
		c.Next()
	}
}
