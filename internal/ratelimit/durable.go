package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"scentwise-server/internal/domain"
)

const durableKeyPrefix = "ratelimit:"

// DurableLimiter counts requests in a shared store, one key per window.
type DurableLimiter struct {
	store domain.CounterStore
	clock domain.Clock
}

// NewDurableLimiter creates a limiter over store.
func NewDurableLimiter(store domain.CounterStore, clock domain.Clock) *DurableLimiter {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &DurableLimiter{store: store, clock: clock}
}

// WindowKey returns the store key for key in the window containing now.
func WindowKey(key string, now time.Time, win time.Duration) string {
	index := now.UnixMilli() / win.Milliseconds()
	return durableKeyPrefix + key + ":" + strconv.FormatInt(index, 10)
}

// Allow implements Limiter.
func (d *DurableLimiter) Allow(ctx context.Context, key string, max int, win time.Duration) (Decision, error) {
	if win < time.Millisecond {
		return Decision{}, fmt.Errorf("rate limit window too small: %s", win)
	}
	count, err := d.store.IncrWithExpiry(ctx, WindowKey(key, d.clock.Now(), win), win)
	if err != nil {
		return Decision{}, fmt.Errorf("durable rate limit: %w", err)
	}
	if count > int64(max) {
		return Decision{Allowed: false, Remaining: 0}, nil
	}
	return Decision{Allowed: true, Remaining: max - int(count)}, nil
}
