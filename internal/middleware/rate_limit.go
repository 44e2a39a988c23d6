// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/threedframe/threedframe-backend/internal/config"
)

// ipLimiter keeps one token bucket per client IP and prunes buckets that have
// been idle for a few minutes, so the map stays bounded by active clients.
type ipLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
}

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(limit rate.Limit, burst int) *ipLimiter {
	l := &ipLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		burst:   burst,
	}
	go l.prune()
	return l
}

func (l *ipLimiter) prune() {
	for {
		time.Sleep(time.Minute)
		l.mu.Lock()
		for ip, c := range l.clients {
			if time.Since(c.lastSeen) > 3*time.Minute {
				delete(l.clients, ip)
			}
		}
		l.mu.Unlock()
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[ip]
	if !ok {
		c = &client{bucket: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.bucket.Allow()
}

func (l *ipLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimiters bundles the per-IP tiers the router mounts. The general tier
// absorbs bursty dashboard refetches; auth and upload refill once a minute
// because credential guessing and large multipart uploads are the calls worth
// throttling hard.
type RateLimiters struct {
	General gin.HandlerFunc
	Auth    gin.HandlerFunc
	Upload  gin.HandlerFunc
}

func NewRateLimiters(cfg *config.Config) RateLimiters {
	rl := cfg.RateLimit
	return RateLimiters{
		General: newIPLimiter(rate.Limit(rl.GeneralPerSecond), rl.GeneralBurst).middleware(),
		Auth:    newIPLimiter(rate.Every(time.Minute), rl.AuthPerMinute).middleware(),
		Upload:  newIPLimiter(rate.Every(time.Minute), rl.UploadPerMinute).middleware(),
	}
}
