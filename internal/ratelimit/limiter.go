package ratelimit

import (
	"context"
	"time"

	"scentwise-server/internal/domain"
	"scentwise-server/internal/metrics"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
}

// Limiter is implemented by every backend.
type Limiter interface {
	Allow(ctx context.Context, key string, max int, window time.Duration) (Decision, error)
}

// New returns the limiter for the given configuration. A nil store selects the
// in-process backend only.
func New(store domain.CounterStore, clock domain.Clock, logger domain.Logger) Limiter {
	memory := NewMemoryLimiter(clock)
	if store == nil {
		return memory
	}
	return NewFallbackLimiter(NewDurableLimiter(store, clock), memory, logger)
}

// FallbackLimiter serves from primary and falls back to the in-process limiter for any
// call on which primary fails.
type FallbackLimiter struct {
	primary  Limiter
	fallback Limiter
	logger   domain.Logger
}

// NewFallbackLimiter composes two limiters.
func NewFallbackLimiter(primary, fallback Limiter, logger domain.Logger) *FallbackLimiter {
	return &FallbackLimiter{primary: primary, fallback: fallback, logger: logger}
}

// Allow implements Limiter.
func (f *FallbackLimiter) Allow(ctx context.Context, key string, max int, window time.Duration) (Decision, error) {
	dec, err := f.primary.Allow(ctx, key, max, window)
	if err == nil {
		return dec, nil
	}
	metrics.RateLimitFallbackTotal.Inc()
	if f.logger != nil {
		f.logger.Warn("Durable rate limiter failed, using in-process limiter", "key", key, "error", err)
	}
	return f.fallback.Allow(ctx, key, max, window)
}
