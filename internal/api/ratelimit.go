package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the limiter map; it is reset when exceeded.
const maxTrackedClients = 10000

type clientLimiter struct {
	rps      int
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func (l *clientLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxTrackedClients {
			l.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(rate.Limit(l.rps), l.rps)
		l.limiters[key] = lim
	}
	return lim
}

// RateLimitMiddleware applies an rps token bucket per client IP.
func RateLimitMiddleware(rps int) gin.HandlerFunc {
	limiter := &clientLimiter{
		rps:      rps,
		limiters: make(map[string]*rate.Limiter),
	}

	return func(c *gin.Context) {
		if !limiter.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
