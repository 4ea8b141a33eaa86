// Package access classifies a request as owner, premium or free from its credential
// cookies, and revalidates premium callers against the upstream provider on a throttle.
package access

import (
	"scentwise-server/internal/domain"
	"scentwise-server/internal/token"
)

// Resolver maps credential cookies to a tier. It performs no network I/O.
type Resolver struct {
	ownerKey           string
	subscriptionSecret string
	clock              domain.Clock
	logger             domain.Logger
	secure             bool
}

// NewResolver creates a resolver. Empty secrets disable the matching tier.
func NewResolver(ownerKey, subscriptionSecret string, clock domain.Clock, logger domain.Logger, secure bool) *Resolver {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Resolver{
		ownerKey:           ownerKey,
		subscriptionSecret: subscriptionSecret,
		clock:              clock,
		logger:             logger,
		secure:             secure,
	}
}

// Resolve checks owner, then subscription, then falls back to free. A subscription
// cookie that is present but does not verify is expired on the response.
func (r *Resolver) Resolve(jar domain.CookieJar) domain.Access {
	if r.ownerKey != "" {
		if c := jar.Get(OwnerCookie); c != "" && token.VerifyOwner(c, r.ownerKey, r.clock.Now()) {
			return domain.Access{Tier: domain.TierOwner, UserID: domain.OwnerIdentity}
		}
	}

	if r.subscriptionSecret != "" {
		if c := jar.Get(SubscriptionCookie); c != "" {
			sub, res := token.ParseSubscription(c, r.subscriptionSecret)
			if res.OK() {
				return domain.Access{
					Tier:           domain.TierPremium,
					UserID:         sub.CustomerID,
					Email:          sub.Email,
					SubscriptionID: sub.SubscriptionID,
				}
			}
			if r.logger != nil {
				r.logger.Debug("Clearing unverifiable subscription cookie", "result", res.String())
			}
			jar.Set(ExpiredCookie(SubscriptionCookie, r.secure))
		}
	}

	return domain.Access{Tier: domain.TierFree}
}
