package domain

import "context"

// SubscriptionSession is a verified subscription plus the cookie value that proves it.
type SubscriptionSession struct {
	Subscription Subscription
	CookieValue  string
}

type AuthService interface {
	LoginWithEmail(ctx context.Context, email string) (*SubscriptionSession, error)
	VerifyOrder(ctx context.Context, orderID string) (*SubscriptionSession, error)
	LoginOwner(key string) (string, error)
	AuthorizeOwnerKey(key string) bool
}

type RecommendService interface {
	Recommend(ctx context.Context, req *RecommendRequest) (string, error)
}

type CheckoutService interface {
	CreateCheckout(ctx context.Context) (string, error)
}

type WebhookService interface {
	// Handle verifies and records one delivery. A nil event with a nil error is an
	// acknowledged but ignored delivery.
	Handle(ctx context.Context, rawBody []byte, signature string) (*WebhookEvent, error)
}

type DiagnosticsService interface {
	Report(ctx context.Context) *ConfigReport
}

// ConfigReport lists which settings are present and how provider probes answered.
// It never contains secret values.
type ConfigReport struct {
	Config        map[string]string `json:"config"`
	APIKeyTest    string            `json:"apiKeyTest"`
	OrdersAPITest string            `json:"ordersApiTest"`
}
