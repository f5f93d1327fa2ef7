// Per-client throttle for the event feed, which is the only endpoint
// cheap to hammer and expensive to serve.
package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter grants each client address a fixed allowance of requests
// per window. Windows reset lazily on the first request after expiry.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*allowance
	perWindow int
	window    time.Duration
}

type allowance struct {
	remaining int
	openedAt  time.Time
}

// NewRateLimiter allows perWindow requests per client per window and
// evicts idle clients in the background.
func NewRateLimiter(perWindow int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:   make(map[string]*allowance),
		perWindow: perWindow,
		window:    window,
	}
	go rl.evictLoop()
	return rl
}

func (rl *RateLimiter) allow(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	a, ok := rl.clients[addr]
	if !ok || now.Sub(a.openedAt) >= rl.window {
		rl.clients[addr] = &allowance{remaining: rl.perWindow - 1, openedAt: now}
		return true
	}
	if a.remaining > 0 {
		a.remaining--
		return true
	}
	return false
}

// retryAfter reports whole seconds until the client's window reopens.
func (rl *RateLimiter) retryAfter(addr string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	a, ok := rl.clients[addr]
	if !ok {
		return 0
	}
	left := rl.window - time.Since(a.openedAt)
	if left <= 0 {
		return 0
	}
	return int(left.Seconds()) + 1
}

func (rl *RateLimiter) evictLoop() {
	for range time.Tick(10 * rl.window) {
		rl.mu.Lock()
		now := time.Now()
		for addr, a := range rl.clients {
			if now.Sub(a.openedAt) > 2*rl.window {
				delete(rl.clients, addr)
			}
		}
		rl.mu.Unlock()
	}
}

// Wrap throttles next by remote address, answering 429 with a
// Retry-After header once the allowance is spent. The server listens
// directly, so RemoteAddr is the real client.
func (rl *RateLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr := r.RemoteAddr
		if host, _, err := net.SplitHostPort(addr); err == nil {
			addr = host
		}
		if !rl.allow(addr) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter(addr)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
