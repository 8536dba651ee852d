package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimit applies a per-client-IP token bucket: r requests per second
// with burst b. Buckets idle for ten minutes are dropped.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		buckets = make(map[string]*clientBucket)
	)

	go func() {
		for range time.Tick(5 * time.Minute) {
			cutoff := time.Now().Add(-10 * time.Minute)
			mu.Lock()
			for ip, cb := range buckets {
				if cb.lastSeen.Before(cutoff) {
					delete(buckets, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		mu.Lock()
		cb, ok := buckets[ip]
		if !ok {
			cb = &clientBucket{lim: rate.NewLimiter(r, b)}
			buckets[ip] = cb
		}
		cb.lastSeen = time.Now()
		mu.Unlock()

		if !cb.lim.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
