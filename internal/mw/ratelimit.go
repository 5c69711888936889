package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps a token bucket per client IP. Buckets idle for
// longer than idleTTL are dropped on the next prune.
type IPRateLimiter struct {
	clients map[string]*client
	mu      sync.Mutex
	r       rate.Limit
	b       int
	idleTTL time.Duration
	pruned  time.Time
}

// NewIPRateLimiter creates a new IPRateLimiter.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		clients: make(map[string]*client),
		r:       r,
		b:       b,
		idleTTL: 10 * time.Minute,
	}
}

// Allow reports whether a request from ip may proceed at now.
func (i *IPRateLimiter) Allow(ip string, now time.Time) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if now.Sub(i.pruned) > i.idleTTL {
		i.prune(now)
	}
	c, ok := i.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(i.r, i.b)}
		i.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (i *IPRateLimiter) prune(now time.Time) {
	for ip, c := range i.clients {
		if now.Sub(c.lastSeen) > i.idleTTL {
			delete(i.clients, ip)
		}
	}
	i.pruned = now
}

// Clients is the number of tracked client buckets.
func (i *IPRateLimiter) Clients() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.clients)
}

// RateLimiter is a middleware for IP-based rate limiting.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	return RateLimitWith(NewIPRateLimiter(r, b))
}

// RateLimitWith wraps an existing limiter.
func RateLimitWith(limiter *IPRateLimiter) gin.HandlerFunc {
	retry := "1"
	if limiter.r > 0 {
		retry = strconv.Itoa(int(math.Ceil(1 / float64(limiter.r))))
	}
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", retry)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
				"code":  "rate_limited",
			})
			return
		}
		c.Next()
	}
}
