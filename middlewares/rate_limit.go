package middlewares

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Roshan11032005/nutri-backend/utils"
)

// RateLimiter enforces fixed-window request budgets with Redis counters:
// INCR, then EXPIRE on the first hit of a window. Redis being down fails
// open with a warning rather than locking every client out.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	return &RateLimiter{redis: rdb}
}

func (l *RateLimiter) allow(c *gin.Context, key string, limit int, window time.Duration) bool {
	ctx := c.Request.Context()
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		slog.Warn("rate limit check failed, allowing request", "key", key, "error", err)
		return true
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, window).Err(); err != nil {
			slog.Warn("rate limit expire failed", "key", key, "error", err)
		}
	}
	return count <= int64(limit)
}

// PerIP limits by client address.
func (l *RateLimiter) PerIP(scope string, limit int, window time.Duration, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:ip:%s", scope, c.ClientIP())
		if !l.allow(c, key, limit, window) {
			utils.AbortJSON(c, http.StatusTooManyRequests, gin.H{"error": message})
			return
		}
		c.Next()
	}
}

// PerUsername limits by the identity an auth middleware attached earlier in
// the chain. Requests with no identity fall back to the client address.
func (l *RateLimiter) PerUsername(scope string, limit int, window time.Duration, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := c.GetString(CtxUsername)
		if identity == "" {
			identity = c.ClientIP()
		}
		key := fmt.Sprintf("ratelimit:%s:user:%s", scope, identity)
		if !l.allow(c, key, limit, window) {
			utils.AbortJSON(c, http.StatusTooManyRequests, gin.H{"error": message})
			return
		}
		c.Next()
	}
}

// PerBodyField limits by a string field peeked from the JSON body (for
// endpoints like login where the identifier arrives in the request body
// before any token exists). The body stays readable for the handler.
func (l *RateLimiter) PerBodyField(scope, field string, limit int, window time.Duration, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]any
		identity := ""
		if err := c.ShouldBindBodyWithJSON(&body); err == nil {
			if v, ok := body[field].(string); ok {
				identity = strings.ToLower(strings.TrimSpace(v))
			}
		}
		if identity == "" {
			identity = c.ClientIP()
		}
		key := fmt.Sprintf("ratelimit:%s:id:%s", scope, identity)
		if !l.allow(c, key, limit, window) {
			utils.AbortJSON(c, http.StatusTooManyRequests, gin.H{"error": message})
			return
		}
		c.Next()
	}
}
