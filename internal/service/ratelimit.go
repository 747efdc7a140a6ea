package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per client key. It is safe for
// concurrent use. Idle keys are dropped by a background sweep until Stop.
type LoginLimiter struct {
	mu       sync.Mutex
	clients  map[string]*client
	limit    rate.Limit
	burst    int
	idle     time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

type client struct {
	limiter *rate.Limiter
	last    time.Time
}

// NewLoginLimiter allows burst attempts at once per key, refilling at limit
// events per second. It starts a goroutine that removes keys unused for idle.
func NewLoginLimiter(limit rate.Limit, burst int, idle time.Duration) *LoginLimiter {
	l := &LoginLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		burst:   burst,
		idle:    idle,
		stop:    make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// PerMinute converts an attempts-per-minute figure to a rate.Limit.
func PerMinute(n int) rate.Limit {
	return rate.Every(time.Minute / time.Duration(max(n, 1)))
}

// Allow reports whether key may attempt a login now and consumes one attempt.
func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.last = time.Now()
	return c.limiter.Allow()
}

// Len returns the number of tracked keys.
func (l *LoginLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Stop ends the background sweep. It is safe to call more than once.
func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *LoginLimiter) cleanup() {
	interval := max(l.idle/2, time.Millisecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *LoginLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-l.idle)
	for key, c := range l.clients {
		if c.last.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}
