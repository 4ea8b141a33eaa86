package domain

// Monthly query quotas.
const (
	MonthlyQueryLimit   = 500
	FreeTrialQueryLimit = 3
)

// Subscription is the identity a successful login or order verification resolves to.
type Subscription struct {
	SubscriptionID string
	CustomerID     string
	Email          string
}

// SubscriptionStatus is the outcome of an upstream revalidation.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionRefunded SubscriptionStatus = "refunded"
	SubscriptionPaused   SubscriptionStatus = "paused"
	SubscriptionExpired  SubscriptionStatus = "expired"
	// SubscriptionMismatch covers a wrong product or a customer that does not own the order.
	SubscriptionMismatch SubscriptionStatus = "mismatch"
)

// Revoked reports whether the status demotes the caller to the free tier.
func (s SubscriptionStatus) Revoked() bool {
	return s != SubscriptionActive
}
