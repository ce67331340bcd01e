package mdsite

import (
	"sync"
	"time"
)

// RequestLimiter is a sliding-window limiter keyed by client IP.
type RequestLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	max      int
	window   time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRequestLimiter creates a RequestLimiter that allows max requests per
// window. A max of zero or less disables limiting.
func NewRequestLimiter(max int, window time.Duration) *RequestLimiter {
	l := &RequestLimiter{
		requests: make(map[string][]time.Time),
		max:      max,
		window:   window,
		stop:     make(chan struct{}),
	}
	if max > 0 && window > 0 {
		go l.cleanup()
	}
	return l
}

func (l *RequestLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			cutoff := now.Add(-l.window)
			l.mu.Lock()
			for ip, hits := range l.requests {
				kept := prune(hits, cutoff)
				if len(kept) == 0 {
					delete(l.requests, ip)
				} else {
					l.requests[ip] = kept
				}
			}
			l.mu.Unlock()
		}
	}
}

// Allow reports whether ip is under the limit and records the request if so.
func (l *RequestLimiter) Allow(ip string) bool {
	if l.max <= 0 || l.window <= 0 {
		return true
	}
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := prune(l.requests[ip], now.Add(-l.window))
	if len(kept) >= l.max {
		l.requests[ip] = kept
		return false
	}
	l.requests[ip] = append(kept, now)
	return true
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (l *RequestLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
