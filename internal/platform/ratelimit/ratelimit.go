// Package ratelimit keeps a rate.Limiter per caller key with idle eviction.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const idleEviction = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter enforces one event per interval for each key.
type KeyedLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	burst    int
	entries  map[string]*limiterEntry
	now      func() time.Time
}

func NewKeyedLimiter(interval time.Duration, burst int) *KeyedLimiter {
	if burst < 1 {
		burst = 1
	}
	return &KeyedLimiter{
		interval: interval,
		burst:    burst,
		entries:  make(map[string]*limiterEntry),
		now:      time.Now,
	}
}

// Allow reports whether the event for key may proceed now.
func (l *KeyedLimiter) Allow(key string) bool {
	if l.interval <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(l.interval), l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now

	if len(l.entries) > 1024 {
		l.evictIdle(now)
	}

	return e.limiter.Allow()
}

func (l *KeyedLimiter) evictIdle(now time.Time) {
	for key, e := range l.entries {
		if now.Sub(e.lastSeen) > idleEviction {
			delete(l.entries, key)
		}
	}
}
