// ratelimit.go implements per-client rate limiting for the summarize routes.
//
// Every summary costs a call to a paid model API, so each client IP gets a
// token bucket (golang.org/x/time/rate) holding perHour tokens that refills
// at perHour/3600 tokens per second. An empty bucket means 429.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Shimizu-Technology/pdf-summarizer/internal/models"
)

// RateLimiter tracks request rates per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	perHour int
	clients map[string]*client
	stop    chan struct{}
	once    sync.Once
}

// client is the token bucket state for a single IP.
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing perHour requests per client.
// A non-positive perHour disables limiting.
func NewRateLimiter(perHour int) *RateLimiter {
	rl := &RateLimiter{
		perHour: perHour,
		clients: make(map[string]*client),
		stop:    make(chan struct{}),
	}

	if perHour > 0 {
		go rl.cleanup(10*time.Minute, time.Hour)
	}

	return rl
}

// Close stops the background cleanup goroutine.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

// RateLimit returns Gin middleware that enforces the per-client limit.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.perHour <= 0 {
			c.Next()
			return
		}

		allowed, remaining := rl.allow(c.ClientIP(), time.Now())
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.perHour))
		if !allowed {
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Rate limit exceeded. Try again later.",
				Code:    http.StatusTooManyRequests,
			})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}

// allow consumes a token for key at now if one is available and reports how
// many whole tokens are left. A partly refilled token does not count.
func (rl *RateLimiter) allow(key string, now time.Time) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.clients[key]
	if !ok {
		cl = &client{
			limiter: rate.NewLimiter(rate.Limit(float64(rl.perHour)/3600.0), rl.perHour),
		}
		rl.clients[key] = cl
	}
	cl.lastSeen = now

	if !cl.limiter.AllowN(now, 1) {
		return false, 0
	}
	return true, max(int(math.Floor(cl.limiter.TokensAt(now))), 0)
}

// cleanup periodically drops clients idle for longer than maxIdle.
func (rl *RateLimiter) cleanup(every, maxIdle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for ip, cl := range rl.clients {
				if now.Sub(cl.lastSeen) > maxIdle {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}
