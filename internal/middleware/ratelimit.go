package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/seatbook/seatbook-api/internal/pkg/logger"
	"github.com/seatbook/seatbook-api/internal/pkg/response"
)

// fixedWindow increments the counter for KEYS[1] and starts its window on
// the first hit. Returns {count, ttl_ms}.
var fixedWindow = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {count, ttl}
`)

// RateLimiter is a fixed-window limiter backed by Redis.
type RateLimiter struct {
	client  *redis.Client
	enabled bool
	window  time.Duration
}

// NewRateLimiter creates a limiter. A nil client disables limiting.
func NewRateLimiter(client *redis.Client, enabled bool) *RateLimiter {
	return &RateLimiter{client: client, enabled: enabled, window: time.Minute}
}

// RateLimitResult describes one limiter decision
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Allow records a hit for key under scope.
func (l *RateLimiter) Allow(ctx context.Context, scope, key string, limit int) (*RateLimitResult, error) {
	now := time.Now()
	if l == nil || l.client == nil || !l.enabled || limit <= 0 {
		return &RateLimitResult{Allowed: true, Limit: limit, Remaining: limit, ResetAt: now.Add(time.Minute)}, nil
	}

	raw, err := fixedWindow.Run(ctx, l.client, []string{rateLimitKey(scope, key)}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(raw) != 2 {
		return nil, fmt.Errorf("unexpected rate limit reply: %v", raw)
	}

	count, ttl := int(raw[0]), time.Duration(raw[1])*time.Millisecond
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   now.Add(ttl),
	}, nil
}

// Limit returns middleware allowing limit requests per minute per caller.
// Authenticated callers are keyed by user id, anonymous ones by client IP.
// Redis failures let the request through.
func (l *RateLimiter) Limit(scope string, limit int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := l.Allow(r.Context(), scope, callerKey(r), limit)
			if err != nil {
				logger.LogWarn(r.Context(), "Rate limit check failed", "scope", scope, "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				response.TooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if id := GetUserID(r.Context()); id != uuid.Nil {
		return "user:" + id.String()
	}
	return "ip:" + getClientIP(r)
}

func rateLimitKey(scope, key string) string {
	return "seatbook:ratelimit:" + scope + ":" + key
}
