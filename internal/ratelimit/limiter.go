// Package ratelimit implements per-client sliding-window admission control.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultWindow is the sliding window length.
const DefaultWindow = time.Minute

// Limiter tracks recent request timestamps per client key: a request is
// admitted while fewer than limit timestamps fall inside the trailing
// window.
type Limiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	requests map[string][]time.Time
}

// New creates a limiter admitting at most limit requests per window.
func New(limit int, window time.Duration) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		limit:    limit,
		window:   window,
		requests: make(map[string][]time.Time),
	}
}

// Limit returns the configured per-window limit.
func (l *Limiter) Limit() int { return l.limit }

// Allow purges timestamps older than the window for key, then either rejects
// (count at limit) or records now and admits. The second return value is the
// remaining quota after the decision, for response headers.
func (l *Limiter) Allow(key string, now time.Time) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.requests[key][:0]
	for _, t := range l.requests[key] {
		if now.Sub(t) < l.window {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.limit {
		l.requests[key] = recent
		return false, 0
	}

	recent = append(recent, now)
	l.requests[key] = recent
	return true, l.limit - len(recent)
}

// EvictIdle removes keys whose newest timestamp has aged out of the window,
// so that one-off clients do not pin memory forever. Returns the number of
// keys removed.
func (l *Limiter) EvictIdle(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for key, times := range l.requests {
		if len(times) == 0 || now.Sub(times[len(times)-1]) >= l.window {
			delete(l.requests, key)
			evicted++
		}
	}
	return evicted
}

// Keys returns the number of tracked client keys.
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}

// Janitor evicts idle keys every interval until ctx is done.
func (l *Limiter) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.EvictIdle(now)
		}
	}
}
