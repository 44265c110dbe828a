// In-memory per-client rate limiting for the simulate endpoint.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter counts requests per client within a fixed window.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	per     time.Duration
}

type window struct {
	count   int
	started time.Time
}

// NewRateLimiter allows limit requests per client per window.
func NewRateLimiter(limit int, per time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		per:     per,
	}
}

// Allow records a request from the client and reports whether it fits in the
// current window. Stale windows are pruned opportunistically.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if len(rl.windows) > 1024 {
		for key, wdw := range rl.windows {
			if now.Sub(wdw.started) > 2*rl.per {
				delete(rl.windows, key)
			}
		}
	}

	wdw, ok := rl.windows[client]
	if !ok || now.Sub(wdw.started) >= rl.per {
		rl.windows[client] = &window{count: 1, started: now}
		return true
	}

	wdw.count++
	return wdw.count <= rl.limit
}

// RetryAfter returns seconds until the client's window resets.
func (rl *RateLimiter) RetryAfter(client string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	wdw, ok := rl.windows[client]
	if !ok {
		return 0
	}
	remaining := rl.per - time.Since(wdw.started)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// clientKey identifies the caller: first X-Forwarded-For hop when proxied,
// otherwise the remote address without its port.
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware wraps a handler with rate limiting. Returns 429 with a
// Retry-After header when the limit is exceeded.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := clientKey(r)
		if !rl.Allow(client) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(client)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
