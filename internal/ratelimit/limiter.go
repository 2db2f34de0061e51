package ratelimit

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	DefaultCapacity = 10
	DefaultWindow   = 60 * time.Second

	cleanupInterval = time.Minute
)

// Limiter admits at most capacity requests per client within a trailing
// window. State is process-local: under horizontal scaling each instance
// enforces its own budget, which is an accepted best-effort property of
// this control.
type Limiter struct {
	capacity int
	window   time.Duration

	mu   sync.Mutex
	hits map[string][]time.Time

	now func() time.Time
}

func New(capacity int, window time.Duration) *Limiter {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if window <= 0 {
		window = DefaultWindow
	}

	l := &Limiter{
		capacity: capacity,
		window:   window,
		hits:     make(map[string][]time.Time),
		now:      time.Now,
	}
	go l.cleanupLoop()
	return l
}

// Allow prunes entries older than the window and then either records the
// request and admits it, or rejects without recording when the client is at
// capacity.
func (l *Limiter) Allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.prune(clientID, now)

	if len(recent) >= l.capacity {
		l.hits[clientID] = recent
		return false
	}

	l.hits[clientID] = append(recent, now)
	return true
}

// Remaining reports how many requests the client may still make within the
// current window. It does not record a request.
func (l *Limiter) Remaining(clientID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.prune(clientID, l.now())
	l.hits[clientID] = recent

	if remaining := l.capacity - len(recent); remaining > 0 {
		return remaining
	}
	return 0
}

// prune must be called with the mutex held.
func (l *Limiter) prune(clientID string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	timestamps := l.hits[clientID]

	kept := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}

// cleanupLoop drops clients that have gone quiet so the map does not grow
// for the lifetime of the process.
func (l *Limiter) cleanupLoop() {
	for {
		time.Sleep(cleanupInterval)

		l.mu.Lock()
		cutoff := l.now().Add(-l.window)
		for id, timestamps := range l.hits {
			if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
				delete(l.hits, id)
			}
		}
		l.mu.Unlock()
	}
}

// ClientID derives the rate-limit key from the forwarded client address.
// The header is spoofable; this identifier backs a best-effort control, not
// a security boundary.
func ClientID(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return "unknown"
	}
	// first hop is the original client
	if idx := strings.Index(forwarded, ","); idx >= 0 {
		forwarded = forwarded[:idx]
	}
	if ip := strings.TrimSpace(forwarded); ip != "" {
		return ip
	}
	return "unknown"
}
