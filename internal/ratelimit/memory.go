package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a sliding window limiter for single-instance deployments
// without Redis. Stale keys are pruned lazily on access.
type MemoryLimiter struct {
	mu     sync.Mutex
	events map[string][]time.Time
}

// NewMemoryLimiter constructs an empty in-process limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{events: make(map[string][]time.Time)}
}

// Allow registers an event for the given key and returns whether it is within the limit.
func (l *MemoryLimiter) Allow(_ context.Context, key string, window time.Duration, max int) (bool, int, time.Time, error) {
	if max <= 0 || window <= 0 {
		return true, max, time.Now().Add(window), nil
	}

	now := time.Now()
	cutoff := now.Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.events[key][:0]
	for _, at := range l.events[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	kept = append(kept, now)
	l.events[key] = kept

	remaining := max - len(kept)
	if remaining < 0 {
		remaining = 0
	}
	return len(kept) <= max, remaining, now.Add(window), nil
}
