package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterConfig tunes the per-IP burst limiter that sits in front
// of the public auth endpoints. This is coarse transport-level
// protection; the per-account sliding windows live in the ratelimit
// package.
type RateLimiterConfig struct {
	RequestsPerSecond int
	Burst             int
	CleanupInterval   time.Duration
	TTL               time.Duration
}

// ipLimiter holds one middleware instance's visitor state. Stale
// entries are swept inline once per CleanupInterval instead of by a
// background goroutine, so an instance holds no resources beyond its
// map and needs no shutdown.
type ipLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	config    RateLimiterConfig
	lastSweep time.Time
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	if now.Sub(l.lastSweep) > l.config.CleanupInterval {
		for addr, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.config.TTL {
				delete(l.visitors, addr)
			}
		}

		l.lastSweep = now
	}

	v, exists := l.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.Burst)
		l.visitors[ip] = &visitor{limiter, now}
		return limiter
	}

	v.lastSeen = now
	return v.limiter
}

func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Minute
	}
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}

	l := &ipLimiter{
		visitors:  make(map[string]*visitor),
		config:    config,
		lastSweep: time.Now(),
	}

	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}

		c.Next()
	}
}
