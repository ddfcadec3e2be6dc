package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"sampoornaangan-backend/internal/error/code"
	"sampoornaangan-backend/internal/error/response"
)

// TokenBucket is a simple token-bucket rate limiter
type TokenBucket struct {
	rate       float64   // tokens refilled per second
	capacity   int       // bucket capacity
	tokens     float64   // current token count
	lastRefill time.Time // last refill time
	mu         sync.Mutex
}

// NewTokenBucket creates a token bucket limiter
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow tries to take one token
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	tb.tokens += elapsed * tb.rate
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

var (
	ipLimiters     = make(map[string]*TokenBucket)
	ipLimitersMu   sync.RWMutex
	pathLimiters   = make(map[string]*TokenBucket)
	pathLimitersMu sync.RWMutex
)

// RateLimiterConfig configures a limiter middleware
type RateLimiterConfig struct {
	Rate      float64 // requests per second
	Burst     int     // burst allowance
	LimitType string  // "ip", "path" or "combined"
}

// DefaultRateLimiterConfig is used when no config is given
var DefaultRateLimiterConfig = RateLimiterConfig{
	Rate:      1,
	Burst:     5,
	LimitType: "ip",
}

func getIPLimiter(key string, cfg RateLimiterConfig) *TokenBucket {
	ipLimitersMu.RLock()
	limiter, exists := ipLimiters[key]
	ipLimitersMu.RUnlock()

	if !exists {
		limiter = NewTokenBucket(cfg.Rate, cfg.Burst)
		ipLimitersMu.Lock()
		ipLimiters[key] = limiter
		ipLimitersMu.Unlock()
	}
	return limiter
}

func getPathLimiter(path string, cfg RateLimiterConfig) *TokenBucket {
	pathLimitersMu.RLock()
	limiter, exists := pathLimiters[path]
	pathLimitersMu.RUnlock()

	if !exists {
		limiter = NewTokenBucket(cfg.Rate, cfg.Burst)
		pathLimitersMu.Lock()
		pathLimiters[path] = limiter
		pathLimitersMu.Unlock()
	}
	return limiter
}

// RateLimiter creates a rate limiting middleware
func RateLimiter(config ...RateLimiterConfig) gin.HandlerFunc {
	var cfg RateLimiterConfig
	if len(config) > 0 {
		cfg = config[0]
	} else {
		cfg = DefaultRateLimiterConfig
	}

	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRateLimiterConfig.Rate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultRateLimiterConfig.Burst
	}
	if cfg.LimitType == "" {
		cfg.LimitType = DefaultRateLimiterConfig.LimitType
	}

	return func(c *gin.Context) {
		var limiter *TokenBucket

		switch cfg.LimitType {
		case "path":
			limiter = getPathLimiter(c.Request.URL.Path, cfg)
		case "combined":
			limiter = getIPLimiter(c.ClientIP()+":"+c.Request.URL.Path, cfg)
		default:
			limiter = getIPLimiter(c.ClientIP(), cfg)
		}

		if !limiter.Allow() {
			response.AbortFail(c, code.ErrTooManyRequests, nil)
			return
		}

		c.Next()
	}
}

// IPRateLimiter limits per client IP
func IPRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{Rate: rate, Burst: burst, LimitType: "ip"})
}

// PathRateLimiter limits per request path
func PathRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{Rate: rate, Burst: burst, LimitType: "path"})
}

// Periodically drop idle limiters so the maps stay bounded
func init() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			ipLimitersMu.Lock()
			ipLimiters = make(map[string]*TokenBucket)
			ipLimitersMu.Unlock()

			pathLimitersMu.Lock()
			pathLimiters = make(map[string]*TokenBucket)
			pathLimitersMu.Unlock()
		}
	}()
}
