package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type keyLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// LocalLimiter is an in-process token bucket per key, used when no Redis is
// configured
type LocalLimiter struct {
	mu   sync.Mutex
	m    map[string]*keyLimiter
	r    rate.Limit
	b    int
	ttl  time.Duration
	stop chan struct{}
	once sync.Once
}

// NewLocalLimiter allows limit requests per window for each key, with
// bursts up to limit. Idle keys are dropped after ttl.
func NewLocalLimiter(limit int, window, ttl time.Duration) *LocalLimiter {
	l := &LocalLimiter{
		m:    make(map[string]*keyLimiter),
		r:    rate.Limit(float64(limit) / window.Seconds()),
		b:    limit,
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	go l.gc()
	return l
}

func (l *LocalLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if kl, ok := l.m[key]; ok {
		kl.seen = time.Now()
		return kl.lim
	}
	lim := rate.NewLimiter(l.r, l.b)
	l.m[key] = &keyLimiter{lim: lim, seen: time.Now()}
	return lim
}

// Allow consumes one token for key
func (l *LocalLimiter) Allow(key string) bool {
	return l.get(key).Allow()
}

func (l *LocalLimiter) gc() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep(time.Now())
		}
	}
}

func (l *LocalLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range l.m {
		if now.Sub(v.seen) > l.ttl {
			delete(l.m, k)
		}
	}
}

// Stop ends the cleanup goroutine
func (l *LocalLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}
