package ratelimit

import (
	"context"
	"sync"
	"time"

	"scentwise-server/internal/domain"
)

const (
	// SweepInterval is the minimum time between two sweeps of the entry map.
	SweepInterval = time.Minute
	// retentionFactor times the longest window seen is how long an idle entry survives a sweep.
	retentionFactor = 10
	minRetention    = 10 * time.Minute
)

type window struct {
	count int
	start time.Time
}

// MemoryLimiter is a fixed-window limiter held in process memory.
type MemoryLimiter struct {
	mu        sync.Mutex
	entries   map[string]*window
	clock     domain.Clock
	lastSweep time.Time
	longest   time.Duration
}

// NewMemoryLimiter creates an empty limiter.
func NewMemoryLimiter(clock domain.Clock) *MemoryLimiter {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &MemoryLimiter{
		entries:   make(map[string]*window),
		clock:     clock,
		lastSweep: clock.Now(),
	}
}

// Allow implements Limiter. It never returns an error.
func (m *MemoryLimiter) Allow(_ context.Context, key string, max int, win time.Duration) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if win > m.longest {
		m.longest = win
	}
	m.sweep(now)

	e, ok := m.entries[key]
	if !ok || now.Sub(e.start) >= win {
		m.entries[key] = &window{count: 1, start: now}
		return Decision{Allowed: true, Remaining: nonNegative(max - 1)}, nil
	}

	e.count++
	if e.count > max {
		return Decision{Allowed: false, Remaining: 0}, nil
	}
	return Decision{Allowed: true, Remaining: max - e.count}, nil
}

// Len returns the number of tracked keys.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < SweepInterval {
		return
	}
	m.lastSweep = now

	retention := m.longest * retentionFactor
	if retention < minRetention {
		retention = minRetention
	}
	for key, e := range m.entries {
		if now.Sub(e.start) > retention {
			delete(m.entries, key)
		}
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
