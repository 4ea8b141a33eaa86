package access

import (
	"context"

	"scentwise-server/internal/domain"
	"scentwise-server/internal/metrics"
)

type revalidationState int

const (
	notValidatedThisPeriod revalidationState = iota
	validated
)

// Revalidator re-checks a premium caller's subscription upstream at most once per
// RevalidationInterval, tracked by a marker cookie. An upstream failure trusts the
// existing token.
type Revalidator struct {
	provider domain.SubscriptionProvider
	logger   domain.Logger
	secure   bool
}

// NewRevalidator creates a revalidator. A nil provider disables revalidation.
func NewRevalidator(provider domain.SubscriptionProvider, logger domain.Logger, secure bool) *Revalidator {
	return &Revalidator{provider: provider, logger: logger, secure: secure}
}

func stateOf(jar domain.CookieJar, acc domain.Access) revalidationState {
	if marker := jar.Get(RevalidationCookie); marker != "" && marker == acc.SubscriptionID {
		return validated
	}
	return notValidatedThisPeriod
}

// Revalidate returns acc unchanged, or a free-tier Access when the upstream provider
// reports the subscription revoked.
func (v *Revalidator) Revalidate(ctx context.Context, jar domain.CookieJar, acc domain.Access) domain.Access {
	if !acc.IsPremium() || v.provider == nil {
		return acc
	}
	if stateOf(jar, acc) == validated {
		return acc
	}

	status, err := v.provider.CheckStatus(ctx, acc.SubscriptionID, acc.UserID)
	if err != nil {
		metrics.RevalidationsTotal.WithLabelValues("error").Inc()
		v.logger.Warn("Subscription revalidation failed, trusting existing token", "customer_id", acc.UserID, "error", err)
		return acc
	}

	if status.Revoked() {
		metrics.RevalidationsTotal.WithLabelValues("revoked").Inc()
		v.logger.Info("Subscription revoked upstream", "customer_id", acc.UserID, "status", string(status))
		jar.Set(ExpiredCookie(SubscriptionCookie, v.secure))
		jar.Set(ExpiredCookie(RevalidationCookie, v.secure))
		return domain.Access{Tier: domain.TierFree}
	}

	metrics.RevalidationsTotal.WithLabelValues("active").Inc()
	jar.Set(RevalidationMarkerCookie(acc.SubscriptionID, v.secure))
	return acc
}
