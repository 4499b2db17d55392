package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/disputekit/disputekit-server/internal/domain"
)

const (
	maxTrackedClients = 10000
	clientIdleTTL     = 10 * time.Minute
)

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	perMinute int
	clients   *expirable.LRU[string, *rate.Limiter]
}

// NewRateLimiter allows perMinute requests per client with a burst of the
// same size. Idle clients are forgotten after ten minutes.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		perMinute: perMinute,
		clients:   expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, clientIdleTTL),
	}
}

// Allow reports whether the client may make a request now.
func (r *RateLimiter) Allow(client string) bool {
	limiter, ok := r.clients.Get(client)
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(r.perMinute)), r.perMinute)
		r.clients.Add(client, limiter)
	}
	return limiter.Allow()
}

// Middleware returns the gin handler. A non-positive limit disables it.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.perMinute <= 0 {
			c.Next()
			return
		}
		if !r.Allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(int((time.Minute / time.Duration(r.perMinute)).Seconds())+1))
			AbortWithError(c, http.StatusTooManyRequests, domain.CodeRateLimit, "rate limit exceeded")
			return
		}
		c.Next()
	}
}
