package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rjosephs/daybook-backend/pkg/clientip"
)

const (
	// RateLimitWindow is the counting window for per-IP request limits.
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window.
	RateLimitMaxRequests = 60
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting.
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs.
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked.
	BlockedIPDuration = 24 * time.Hour
)

// RateLimit returns per-IP rate limiting backed by Redis, with temporary IP
// blocking past the limit. Fails open when Redis is unreachable.
func RateLimit(rdb *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ipAddress := clientip.RealClientIP(r)
			ctx := r.Context()

			blockedKey := BlockedIPKeyPrefix + ipAddress
			isBlocked, err := rdb.Exists(ctx, blockedKey).Result()
			if err == nil && isBlocked > 0 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Your IP has been temporarily blocked due to excessive requests. Please try again later."}`))
				return
			}

			rateLimitKey := RateLimitKeyPrefix + ipAddress

			currentCount, err := rdb.Get(ctx, rateLimitKey).Int()
			if err != nil {
				// Key doesn't exist, start with 0.
				currentCount = 0
			}
			newCount := currentCount + 1

			if currentCount == 0 {
				err = rdb.Set(ctx, rateLimitKey, "1", RateLimitWindow).Err()
			} else {
				err = rdb.Incr(ctx, rateLimitKey).Err()
				if err == nil {
					rdb.Expire(ctx, rateLimitKey, RateLimitWindow)
				}
			}
			if err != nil {
				// If Redis fails, allow the request (fail open).
				next.ServeHTTP(w, r)
				return
			}

			if newCount > RateLimitMaxRequests {
				rdb.Set(ctx, blockedKey, "1", BlockedIPDuration)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(fmt.Sprintf(`{"error":"Rate limit exceeded. Your IP has been temporarily blocked. Please try again later.","retry_after":%d}`, int(RateLimitWindow.Seconds()))))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(RateLimitMaxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(RateLimitMaxRequests-newCount))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(RateLimitWindow).Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}
