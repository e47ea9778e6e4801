package middleware

import (
	"floorkeeper/internal/config"
	"floorkeeper/internal/models"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements per-client rate limiting using a token bucket per IP
type RateLimiter struct {
	clients  map[string]*client
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	interval time.Duration // time to refill one token
	idle     time.Duration // clients unseen for this long are forgotten
	window   int
	requests int
}

// NewRateLimiter creates a new rate limiter middleware and starts its cleanup routine
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	rl := newRateLimiter(cfg, time.Hour)
	go rl.cleanupRoutine()
	return rl
}

func newRateLimiter(cfg config.RateLimitConfig, idle time.Duration) *RateLimiter {
	if cfg.Requests <= 0 {
		cfg.Requests = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = 1
	}
	burst := cfg.Burst
	if burst <= 0 || burst > cfg.Requests {
		burst = cfg.Requests
	}

	interval := time.Duration(cfg.Window) * time.Second / time.Duration(cfg.Requests)
	return &RateLimiter{
		clients:  make(map[string]*client),
		rate:     rate.Every(interval),
		burst:    burst,
		interval: interval,
		idle:     idle,
		window:   cfg.Window,
		requests: cfg.Requests,
	}
}

// getLimiter returns the limiter for key, creating it with a full bucket
func (rl *RateLimiter) getLimiter(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, exists := rl.clients[key]
	if !exists {
		c = &client{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// evictIdle forgets clients not seen since now minus the idle period
func (rl *RateLimiter) evictIdle(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	evicted := 0
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) >= rl.idle {
			delete(rl.clients, key)
			evicted++
		}
	}
	return evicted
}

func (rl *RateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(rl.idle)
	defer ticker.Stop()

	for now := range ticker.C {
		rl.evictIdle(now)
	}
}

// Middleware returns a Gin middleware function that implements rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip rate limiting for Swagger documentation
		if strings.HasPrefix(c.Request.URL.Path, "/swagger/") {
			c.Next()
			return
		}

		now := time.Now()
		limiter := rl.getLimiter(c.ClientIP(), now)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.requests))
		if !limiter.AllowN(now, 1) {
			retry := int(math.Ceil(rl.interval.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", now.Add(time.Duration(retry)*time.Second).Unix()))
			c.Header("Retry-After", fmt.Sprintf("%d", retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Success: false,
				Error:   fmt.Sprintf("rate limit exceeded, retry after %ds", retry),
				Code:    CodeRateLimited,
			})
			return
		}

		tokens := int(limiter.TokensAt(now))
		if tokens < 0 {
			tokens = 0
		}
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", tokens))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", now.Add(time.Duration(rl.window)*time.Second).Unix()))

		c.Next()
	}
}
