package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"applybrain-backend/internal/delivery/http/response"
	"applybrain-backend/pkg/logger"
	"applybrain-backend/pkg/redis"
	"applybrain-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type RateLimitConfig struct {
	// Requests per window
	Limit  int
	Window time.Duration
	// Default: client IP
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// Reject instead of falling back to memory when Redis errors.
	FailClosed bool
}

// KEYS[1] = counter key, ARGV[1] = TTL in seconds. Returns {count, ttl}.
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

func clientIPKey(c *gin.Context) string { return c.ClientIP() }

func GlobalRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:ip:"}
}

// LoginRateLimitConfig guards login and signup, which proxy to the auth provider.
func LoginRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:login:", FailClosed: true}
}

// UploadRateLimitConfig is keyed by user when a session is present.
func UploadRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:upload:",
		KeyFunc: func(c *gin.Context) string {
			if id, ok := IdentityFrom(c); ok {
				return id.UserID
			}
			return c.ClientIP()
		},
	}
}

// localLimiters is the per-process fallback: one token bucket per key that
// refills Limit tokens per Window.
type localLimiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	entries   map[string]*localEntry
	lastSweep time.Time
}

type localEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

func newLocalLimiters(cfg RateLimitConfig) *localLimiters {
	return &localLimiters{
		limit:   rate.Limit(float64(cfg.Limit) / cfg.Window.Seconds()),
		burst:   cfg.Limit,
		entries: map[string]*localEntry{},
	}
}

func (l *localLimiters) allow(key string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > 5*time.Minute {
		for k, e := range l.entries {
			if now.Sub(e.seen) > 10*time.Minute {
				delete(l.entries, k)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.seen = now

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// RateLimitMiddleware counts requests in Redis when it is reachable and in a
// process-local token bucket otherwise.
func RateLimitMiddleware(cfg RateLimitConfig, secLog *security.SecurityLogger) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIPKey
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	local := newLocalLimiters(cfg)

	return func(c *gin.Context) {
		key := cfg.KeyPrefix + cfg.KeyFunc(c)

		allowed, retryAfter, remaining := true, time.Duration(0), -1
		client := redis.Client()
		if client != nil {
			count, ttl, err := checkRateLimitRedis(c.Request.Context(), client, key, cfg.Window)
			if err == nil {
				allowed = count <= cfg.Limit
				retryAfter = ttl
				remaining = max(cfg.Limit-count, 0)
			} else if cfg.FailClosed {
				logger.Log.Error("Rate limiter unavailable", "key_prefix", cfg.KeyPrefix, "error", err)
				response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
				c.Abort()
				return
			} else {
				client = nil
			}
		}
		if client == nil {
			allowed, retryAfter = local.allow(key, time.Now())
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		if remaining >= 0 {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		if !allowed {
			secs := int(retryAfter.Seconds())
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			if secLog != nil {
				secLog.LogRateLimitTriggered(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"), response.RequestID(c), c.FullPath())
			}
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func checkRateLimitRedis(ctx context.Context, client *goredis.Client, key string, window time.Duration) (int, time.Duration, error) {
	res, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, int(window.Seconds())).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis rate limit eval failed: %w", err)
	}
	arr, ok := res.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, 0, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)
	return int(count), time.Duration(ttl) * time.Second, nil
}
