package events

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter caps how many callbacks each source host may deliver per
// period. A misconfigured device can fire the same event in a tight loop.
type RateLimiter struct {
	mu     sync.Mutex
	seen   map[string]*window
	limit  int
	period time.Duration
}

type window struct {
	count int
	start time.Time
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		seen:   make(map[string]*window),
		limit:  limit,
		period: period,
	}
}

// Allow reports whether a callback from the given remote address is within
// the limit.
func (rl *RateLimiter) Allow(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.seen[host]
	if !ok || now.Sub(w.start) > rl.period {
		rl.seen[host] = &window{count: 1, start: now}
		return true
	}

	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

// Middleware applies the limiter to an HTTP handler.
func (rl *RateLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(r.RemoteAddr) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
