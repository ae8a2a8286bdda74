package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 2)
	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	// Keys are independent.
	assert.True(t, rl.Allow("b"))
}

func TestRateLimiter_DropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 1)
	now := time.Unix(1700000000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	now = now.Add(idleTTL + time.Second)
	rl.Allow("b")
	assert.NotContains(t, rl.limits, "a")
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiter_Middleware(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(rate.Every(time.Hour), 1)
	handler := rl.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	serve := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		assert.NoError(t, handler(e.NewContext(req, rec)))
		return rec
	}

	assert.Equal(t, http.StatusOK, serve().Code)
	rec := serve()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	assert.Equal(t, DefaultRate, rl.rate)
	assert.Equal(t, DefaultBurst, rl.burst)
}
