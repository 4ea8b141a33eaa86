package domain

import (
	"context"
	"net/http"
	"time"
)

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	IsProduction() bool

	GetOwnerKey() string
	GetSubscriptionSecret() string
	GetUsageSecret() string

	GetRedisURL() string
	GetRedisTimeout() time.Duration

	GetLemonSqueezyAPIKey() string
	GetLemonSqueezyAPIURL() string
	GetLemonSqueezyStoreID() string
	GetLemonSqueezyProductID() string
	GetLemonSqueezyVariantID() string
	GetLemonSqueezyWebhookSecret() string

	GetGCPProjectID() string
	GetGCPLocation() string
	GetGeminiModel() string

	GetSupabaseURL() string
	GetSupabaseKey() string

	GetCORSAllowedOrigins() []string
}

// Clock returns the current wall-clock time. Week and month buckets are derived from it.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real clock.
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time { return time.Now() }

// CookieJar is the per-request cookie surface: read from the inbound request, write to the response.
type CookieJar interface {
	Get(name string) string
	Set(cookie *http.Cookie)
}

// CounterStore is a durable remote store of integer counters shared by every server instance.
type CounterStore interface {
	// Get returns the stored value; a missing key is (0, nil).
	Get(ctx context.Context, key string) (int64, error)
	Set(ctx context.Context, key string, value int64, ttl time.Duration) error
	// IncrWithExpiry atomically increments key and sets its expiry, returning the new value.
	IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// SubscriptionProvider is the upstream store/billing provider.
type SubscriptionProvider interface {
	FindByEmail(ctx context.Context, email string) (*Subscription, error)
	FindByOrderID(ctx context.Context, orderID string) (*Subscription, error)
	CheckStatus(ctx context.Context, subscriptionID, customerID string) (SubscriptionStatus, error)
	CreateCheckout(ctx context.Context) (string, error)
	Probe(ctx context.Context, path string) (int, error)
}

// TextGenerator is the AI delegate: prompt in, text out.
type TextGenerator interface {
	Generate(ctx context.Context, prompt *Prompt) (string, error)
}

// EventRepository persists received provider webhook events.
type EventRepository interface {
	Store(ctx context.Context, event *WebhookEvent) error
}
