package domain

// Tier is the caller's authorization level.
type Tier string

const (
	TierOwner   Tier = "owner"
	TierPremium Tier = "premium"
	TierFree    Tier = "free"
)

// OwnerIdentity is the fixed identity of the owner tier.
const OwnerIdentity = "owner"

// Access is the resolved classification of one request.
type Access struct {
	Tier           Tier
	UserID         string
	Email          string
	SubscriptionID string
}

// IsOwner reports whether quota is bypassed.
func (a Access) IsOwner() bool { return a.Tier == TierOwner }

// IsPremium reports whether the caller holds a verified subscription token.
func (a Access) IsPremium() bool { return a.Tier == TierPremium }
