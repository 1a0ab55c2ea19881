package middleware

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultLoginRateLimit is the default number of login attempts per minute per client
	DefaultLoginRateLimit = 10
	// CleanupInterval is the interval for cleaning up stale limiters
	CleanupInterval = 5 * time.Minute
	// LimiterTTL is the time-to-live for inactive limiters
	LimiterTTL = 10 * time.Minute
)

// RateLimiter manages per-client rate limiting, keyed by client IP
type RateLimiter struct {
	limiters          map[string]*limiterEntry
	mu                sync.Mutex
	requestsPerMinute int
	rateLimit         rate.Limit
	burstSize         int
	stopCh            chan struct{}
	stopOnce          sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requestsPerMinute per client, all of which may arrive as a burst
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultLoginRateLimit
	}
	return NewRateLimiterWithConfig(requestsPerMinute, requestsPerMinute)
}

// NewRateLimiterWithConfig creates a RateLimiter with custom configuration
func NewRateLimiterWithConfig(requestsPerMinute int, burstSize int) *RateLimiter {
	rl := &RateLimiter{
		limiters:          make(map[string]*limiterEntry),
		requestsPerMinute: requestsPerMinute,
		rateLimit:         rate.Limit(float64(requestsPerMinute) / 60.0),
		burstSize:         burstSize,
		stopCh:            make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow checks if a request from the given client is allowed
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(r.rateLimit, r.burstSize)}
		r.limiters[key] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter.Allow()
}

// RetryAfter estimates how long until the client has a token again
func (r *RateLimiter) RetryAfter(key string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.limiters[key]
	if !exists {
		return 0
	}
	missing := 1 - entry.limiter.Tokens()
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(r.rateLimit) * float64(time.Second))
}

// cleanup periodically removes stale limiters to prevent memory leaks
func (r *RateLimiter) cleanup() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			now := time.Now()
			for key, entry := range r.limiters {
				if now.Sub(entry.lastSeen) > LimiterTTL {
					delete(r.limiters, key)
				}
			}
			r.mu.Unlock()
		case <-r.stopCh:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// RateLimitMiddleware returns an Echo middleware that limits requests per client IP
func RateLimitMiddleware(rl *RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			if !rl.Allow(ip) {
				retryAfter := int(rl.RetryAfter(ip).Seconds()) + 1

				c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.requestsPerMinute))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))

				log.Warn().
					Str("ip", ip).
					Str("path", c.Path()).
					Int("retry_after", retryAfter).
					Msg("Rate limit exceeded")

				return rateLimitError(c, fmt.Sprintf("Too many requests. Please retry after %d seconds.", retryAfter))
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.requestsPerMinute))
			return next(c)
		}
	}
}
