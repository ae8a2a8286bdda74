package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	// DefaultRate is the sustained chat request rate per client.
	DefaultRate = rate.Limit(1)
	// DefaultBurst is the number of chat requests a client may send at once.
	DefaultBurst = 5
	// idleTTL is how long an unused client limiter is kept.
	idleTTL = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides per-key token bucket rate limiting.
type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]*clientLimiter
	rate   rate.Limit
	burst  int
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter. Non-positive values use the defaults.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	if r <= 0 {
		r = DefaultRate
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &RateLimiter{
		limits: make(map[string]*clientLimiter),
		rate:   r,
		burst:  burst,
		now:    time.Now,
	}
}

// getLimiter gets or creates a limiter for the given key and drops idle ones.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for k, cl := range rl.limits {
		if now.Sub(cl.lastSeen) > idleTTL {
			delete(rl.limits, k)
		}
	}
	cl, ok := rl.limits[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limits[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Middleware rejects requests over the limit with 429, keyed by client IP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"code":  "RATE_LIMIT_EXCEEDED",
					"error": "too many requests, please slow down",
				})
			}
			return next(c)
		}
	}
}
