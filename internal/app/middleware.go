package app

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"planner-service/pkg/logger"
)

// requestLogger logs and records metrics for every request.
func (a *App) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		a.Metrics.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		a.Metrics.httpRequestDuration.WithLabelValues(route, c.Request.Method).Observe(elapsed.Seconds())

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("route", route),
			logger.Int("status", status),
			logger.Duration("elapsed", elapsed),
		}
		if status >= http.StatusInternalServerError {
			a.Log.Warn(c.Request.Context(), "request", fields...)
			return
		}
		a.Log.Debug(c.Request.Context(), "request", fields...)
	}
}

const (
	// Limiters of users idle longer than limiterTTL are dropped, and at
	// most maxLimiters are kept.
	maxLimiters = 10000
	limiterTTL  = 10 * time.Minute
)

// rateLimit throttles each user independently. A non-positive rps disables it.
func rateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiters := newUserLimiters(rps, burst, maxLimiters, limiterTTL)
	return func(c *gin.Context) {
		if !limiters.get(c.Param("id")).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// userLimiters hands out one token bucket per user from a bounded LRU.
type userLimiters struct {
	mu    sync.Mutex
	lru   *expirable.LRU[string, *rate.Limiter]
	limit rate.Limit
	burst int
}

func newUserLimiters(rps float64, burst, size int, ttl time.Duration) *userLimiters {
	return &userLimiters{
		lru:   expirable.NewLRU[string, *rate.Limiter](size, nil, ttl),
		limit: rate.Limit(rps),
		burst: max(burst, 1),
	}
}

func (u *userLimiters) get(key string) *rate.Limiter {
	u.mu.Lock()
	defer u.mu.Unlock()
	if l, ok := u.lru.Get(key); ok {
		return l
	}
	l := rate.NewLimiter(u.limit, u.burst)
	u.lru.Add(key, l)
	return l
}
