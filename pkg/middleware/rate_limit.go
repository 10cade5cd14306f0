package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewFixedWindowLimiter counts requests per client IP in a fixed
// window backed by redis, so the count holds across instances. With
// no redis client it degrades to a per-process window, which is only
// acceptable for single-instance dev setups.
func NewFixedWindowLimiter(rdb *redis.Client, name string, max int, window time.Duration) gin.HandlerFunc {
	if rdb == nil {
		return newLocalFixedWindow(max, window)
	}

	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", name, c.ClientIP())

		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// A broken limiter shouldn't take the endpoint down
			// with it.
			zap.L().Warn("Rate limit counter unavailable, letting request through", zap.Error(err))
			c.Next()
			return
		}

		if count == 1 {
			rdb.Expire(c.Request.Context(), key, window)
		}

		if count > int64(max) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, try again later",
			})
			return
		}

		c.Next()
	}
}

type window struct {
	count   int
	resetAt time.Time
}

func newLocalFixedWindow(max int, windowLen time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	windows := make(map[string]*window)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		w, ok := windows[ip]
		if !ok || now.After(w.resetAt) {
			w = &window{resetAt: now.Add(windowLen)}
			windows[ip] = w
		}
		w.count++
		count := w.count
		mu.Unlock()

		if count > max {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, try again later",
			})
			return
		}

		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	visitors = make(map[string]*visitor)
	mu       sync.Mutex
)

func getVisitor(ip string, rps int) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	v, exists := visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(rps), rps*2)
		visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func cleanupVisitors(ttl time.Duration, interval time.Duration) {
	for {
		time.Sleep(interval)
		mu.Lock()
		for ip, v := range visitors {
			if time.Since(v.lastSeen) > ttl {
				delete(visitors, ip)
			}
		}
		mu.Unlock()
	}
}

// NewRedeemLimiter smooths bursts on the public redemption endpoints
// with a per-IP token bucket. It complements rather than replaces
// the fixed-window counter on the manual request form.
func NewRedeemLimiter(rps int) gin.HandlerFunc {
	go cleanupVisitors(3*time.Minute, time.Minute)

	return func(c *gin.Context) {
		if !getVisitor(c.ClientIP(), rps).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}

		c.Next()
	}
}
