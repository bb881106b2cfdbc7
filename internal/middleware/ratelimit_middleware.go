package middleware

import (
	"sync"
	"time"
)

// InvalidAuthRateLimiter throttles failed authentication attempts per IP:
// bad bearer tokens and failed logins share the budget.
type InvalidAuthRateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	limit    int
	window   time.Duration
	now      func() time.Time
	stop     chan struct{}
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewInvalidAuthRateLimiter allows limit failures per window and starts the
// background cleanup. Call Stop to end it.
func NewInvalidAuthRateLimiter(limit int, window time.Duration) *InvalidAuthRateLimiter {
	rl := &InvalidAuthRateLimiter{
		attempts: make(map[string]*attemptInfo),
		limit:    limit,
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow records a failure for ip and reports whether it is still within
// the limit.
func (r *InvalidAuthRateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	info, exists := r.attempts[ip]
	if !exists || now.Sub(info.firstAt) > r.window {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return true
	}
	if info.count >= r.limit {
		return false
	}
	info.count++
	return true
}

// Blocked reports whether ip has used up its budget, without recording.
func (r *InvalidAuthRateLimiter) Blocked(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.attempts[ip]
	if !exists || r.now().Sub(info.firstAt) > r.window {
		return false
	}
	return info.count >= r.limit
}

// Stop ends the cleanup goroutine.
func (r *InvalidAuthRateLimiter) Stop() {
	close(r.stop)
}

func (r *InvalidAuthRateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			now := r.now()
			for ip, info := range r.attempts {
				if now.Sub(info.firstAt) > r.window {
					delete(r.attempts, ip)
				}
			}
			r.mu.Unlock()
		case <-r.stop:
			return
		}
	}
}
