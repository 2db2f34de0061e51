package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Traffic is a coarse per-IP token bucket in front of the whole API. It
// protects the process from floods; the checkout-specific sliding-window
// limiter inside the intake pipeline enforces the business quota.
type Traffic struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
}

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewTraffic(limit rate.Limit, burst int) *Traffic {
	t := &Traffic{
		limit:    limit,
		burst:    burst,
		visitors: make(map[string]*visitor),
	}
	go t.cleanupVisitors()
	return t
}

// Handler wraps next with the per-IP admission check.
func (t *Traffic) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !t.getVisitor(ip).Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getVisitor retrieves or creates a rate limiter for the given IP address.
func (t *Traffic) getVisitor(ip string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, exists := t.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(t.limit, t.burst)
		t.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// cleanupVisitors removes old entries from the visitors map to prevent
// memory leaks.
func (t *Traffic) cleanupVisitors() {
	for {
		time.Sleep(time.Minute)

		t.mu.Lock()
		for ip, v := range t.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(t.visitors, ip)
			}
		}
		t.mu.Unlock()
	}
}
