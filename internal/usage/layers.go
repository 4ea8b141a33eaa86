package usage

import (
	"context"
	"errors"
	"sync"
	"time"

	"scentwise-server/internal/domain"
	"scentwise-server/internal/token"
)

// Key addresses one free-trial counter.
type Key struct {
	IP    string
	Month string
	Jar   domain.CookieJar
}

// Layer is one storage tier of the free-trial chain.
type Layer interface {
	Name() string
	// Read reports found=false when the layer has nothing to say for key.
	Read(ctx context.Context, key Key) (count int, found bool, err error)
	Write(ctx context.Context, key Key, count int) error
}

// StoreLayer is the durable, cross-instance tier. Any successful read is authoritative,
// including zero.
type StoreLayer struct {
	store domain.CounterStore
}

// NewStoreLayer wraps a counter store.
func NewStoreLayer(store domain.CounterStore) *StoreLayer {
	return &StoreLayer{store: store}
}

func storeKey(k Key) string {
	return "sw_free:" + k.IP + ":" + k.Month
}

func (s *StoreLayer) Name() string { return "store" }

func (s *StoreLayer) Read(ctx context.Context, k Key) (int, bool, error) {
	v, err := s.store.Get(ctx, storeKey(k))
	if err != nil {
		return 0, false, err
	}
	return int(v), true, nil
}

func (s *StoreLayer) Write(ctx context.Context, k Key, count int) error {
	return s.store.Set(ctx, storeKey(k), int64(count), StoreTTL)
}

const memorySweepInterval = 5 * time.Minute

type memoryEntry struct {
	count int
	month string
}

// MemoryLayer survives only within one warm process.
type MemoryLayer struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	clock     domain.Clock
	lastSweep time.Time
}

// NewMemoryLayer creates an empty in-process layer.
func NewMemoryLayer(clock domain.Clock) *MemoryLayer {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &MemoryLayer{entries: make(map[string]memoryEntry), clock: clock, lastSweep: clock.Now()}
}

func (m *MemoryLayer) Name() string { return "memory" }

func (m *MemoryLayer) Read(_ context.Context, k Key) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep(k.Month)

	e, ok := m.entries[k.IP+":"+k.Month]
	if !ok || e.month != k.Month || e.count <= 0 {
		return 0, false, nil
	}
	return e.count, true, nil
}

func (m *MemoryLayer) Write(_ context.Context, k Key, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[k.IP+":"+k.Month] = memoryEntry{count: count, month: k.Month}
	return nil
}

// Len returns the number of tracked counters.
func (m *MemoryLayer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryLayer) sweep(month string) {
	now := m.clock.Now()
	if now.Sub(m.lastSweep) < memorySweepInterval {
		return
	}
	m.lastSweep = now
	for key, e := range m.entries {
		if e.month != month {
			delete(m.entries, key)
		}
	}
}

var errNoUsageSecret = errors.New("usage secret not configured")

type freeRecord struct {
	Count int    `json:"c"`
	Month string `json:"m"`
	Sig   string `json:"sig"`
}

// CookieLayer is the client-held tier, weakest of the three.
type CookieLayer struct {
	secret string
	secure bool
}

// NewCookieLayer creates the signed-cookie layer.
func NewCookieLayer(secret string, secure bool) *CookieLayer {
	return &CookieLayer{secret: secret, secure: secure}
}

func freeIdentity(ip string) string {
	return "free:" + ip
}

func (c *CookieLayer) Name() string { return "cookie" }

func (c *CookieLayer) Read(_ context.Context, k Key) (int, bool, error) {
	if k.Jar == nil {
		return 0, false, nil
	}
	var rec freeRecord
	if !token.Decode(k.Jar.Get(FreeCookie), &rec) {
		return 0, false, nil
	}
	if rec.Month == "" || rec.Sig == "" {
		return 0, false, nil
	}
	if !token.VerifyUsage(rec.Sig, c.secret, freeIdentity(k.IP), rec.Count, rec.Month) {
		return 0, false, nil
	}
	if rec.Month != k.Month || rec.Count < 0 {
		return 0, false, nil
	}
	return rec.Count, true, nil
}

func (c *CookieLayer) Write(_ context.Context, k Key, count int) error {
	if c.secret == "" {
		return errNoUsageSecret
	}
	if k.Jar == nil {
		return nil
	}
	value, err := token.Encode(freeRecord{
		Count: count,
		Month: k.Month,
		Sig:   token.UsageDigest(c.secret, freeIdentity(k.IP), count, k.Month),
	})
	if err != nil {
		return err
	}
	k.Jar.Set(counterCookie(FreeCookie, value, c.secure))
	return nil
}
