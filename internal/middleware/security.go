package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/rjosephs/daybook-backend/pkg/clientip"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// --- In-process per-IP rate limiting (fallback when Redis is not configured) ---

const (
	localRateLimitRPS    = 5
	localRateLimitBurst  = 20
	localCleanupInterval = 5 * time.Minute
	localLimiterTTL      = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

type localLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
}

func (l *localLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(localRateLimitRPS, localRateLimitBurst)}
		l.entries[ip] = entry
	}
	entry.lastUse = time.Now()
	return entry.limiter
}

func (l *localLimiter) cleanupLoop() {
	for range time.Tick(localCleanupInterval) {
		l.mu.Lock()
		cutoff := time.Now().Add(-localLimiterTTL)
		for ip, entry := range l.entries {
			if entry.lastUse.Before(cutoff) {
				delete(l.entries, ip)
			}
		}
		l.mu.Unlock()
	}
}

// LocalRateLimit returns in-memory per-IP rate limiting for deployments
// without Redis. State is per-process, so it only approximates the limit
// behind a load balancer.
func LocalRateLimit() func(http.Handler) http.Handler {
	limiters := &localLimiter{entries: make(map[string]*limiterEntry)}
	go limiters.cleanupLoop()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientip.RealClientIP(r)
			if !limiters.get(ip).Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Too many requests. Please slow down."}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
