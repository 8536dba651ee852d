package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ryotaku/taskforge/cache"
	"github.com/ryotaku/taskforge/config"
)

// UserIDKey is the gin context key holding the authenticated user ID.
const UserIDKey = "user_id"

const bearerPrefix = "Bearer "

// Auth guards a route group with Bearer tokens. A token must both
// verify against the JWT secret and still have a live session entry in
// the cache, so logout takes effect before the token expires.
func Auth(sec config.SecurityConfig, store cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, bearerPrefix) {
			abortUnauthorized(c, "missing token")
			return
		}
		raw := auth[len(bearerPrefix):]

		claims, err := ParseToken(raw, sec.JWTSecret)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		alive, err := store.Exists(ctx, "session:"+raw)
		cancel()
		if err != nil || !alive {
			abortUnauthorized(c, "session expired")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// GetUserID returns the authenticated user ID, or 0 outside Auth.
func GetUserID(c *gin.Context) int64 {
	if v, ok := c.Get(UserIDKey); ok {
		return v.(int64)
	}
	return 0
}
