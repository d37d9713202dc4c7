package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/abhinawagoo/guestloops-sub000/pkg/response"
)

const (
	limiterSweepInterval = 3 * time.Minute
	limiterStaleAfter    = 5 * time.Minute
)

// clientLimiter holds a token bucket and last-seen time per client key.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles the unauthenticated tenant-facing routes. Requests
// are keyed by client IP plus the tenant slug in the route, so a burst
// against one tenant's public page does not consume another tenant's budget,
// and a scan across many slugs still pays per slug.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rps      rate.Limit
	burst    int
	stop     chan struct{}
}

// NewRateLimiter creates a RateLimiter allowing rps requests per second per
// client key with the given burst, and starts its stale-entry sweeper.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		stop:     make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Stop terminates the background sweeper.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.limiters[key]
	if !exists {
		limiter := rate.NewLimiter(rl.rps, rl.burst)
		rl.limiters[key] = &clientLimiter{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// sweep drops client keys not seen for limiterStaleAfter.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for key, v := range rl.limiters {
				if time.Since(v.lastSeen) > limiterStaleAfter {
					delete(rl.limiters, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// clientKey scopes the bucket to tenant slug + IP on slug-routed requests.
func clientKey(c *gin.Context) string {
	ip := c.ClientIP()
	if slug := c.Param("slug"); slug != "" {
		return slug + "|" + ip
	}
	return ip
}

// Middleware returns a Gin middleware enforcing the rate limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getLimiter(clientKey(c)).Allow() {
			response.TooManyRequests(c, "too many requests, please try again later")
			return
		}
		c.Next()
	}
}
