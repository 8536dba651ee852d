package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// IPWhitelist restricts requests to the given client IPs. An empty list
// disables the check entirely.
func IPWhitelist(ips []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(ips))
	for _, ip := range ips {
		allowed[ip] = struct{}{}
	}
	return func(c *gin.Context) {
		if len(allowed) > 0 {
			if _, ok := allowed[c.ClientIP()]; !ok {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
				return
			}
		}
		c.Next()
	}
}
