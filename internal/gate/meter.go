package gate

import (
	"context"
	"net/http"

	"scentwise-server/internal/domain"
	"scentwise-server/internal/metrics"
	"scentwise-server/internal/usage"
	apperrors "scentwise-server/pkg/errors"
)

// Allowance is a passed quota check, carried to Commit after the delegate succeeds.
type Allowance struct {
	Tier   domain.Tier
	UserID string
	IP     string
	Used   int
	Limit  int
}

// Report is the usage part of a response body.
func (a Allowance) Report() map[string]interface{} {
	out := map[string]interface{}{"tier": string(a.Tier)}
	switch a.Tier {
	case domain.TierPremium:
		out["usage"] = a.Used
		out["limit"] = a.Limit
	case domain.TierFree:
		if a.Limit > 0 {
			out["freeUsed"] = a.Used
			out["freeLimit"] = a.Limit
		}
	}
	return out
}

// Meter enforces monthly quotas against the usage ledger.
type Meter struct {
	ledger *usage.Ledger
	logger domain.Logger
}

// NewMeter creates a meter.
func NewMeter(ledger *usage.Ledger, logger domain.Logger) *Meter {
	return &Meter{ledger: ledger, logger: logger}
}

// Check reads the caller's count and refuses exhausted quotas. The owner is never
// metered. Anonymous callers are refused outright when the trial cannot be signed.
func (m *Meter) Check(ctx context.Context, jar domain.CookieJar, acc domain.Access, ip string) (Allowance, *apperrors.AppError) {
	a := Allowance{Tier: acc.Tier, UserID: acc.UserID, IP: ip}

	switch acc.Tier {
	case domain.TierOwner:
		return a, nil

	case domain.TierPremium:
		a.Limit = domain.MonthlyQueryLimit
		a.Used = m.ledger.ReadPremium(jar, acc.UserID).Count
		if a.Used >= a.Limit {
			return a, m.exhausted(apperrors.NewQuotaExceededError(
				"Monthly query limit reached. Your quota resets at the start of next month.",
				http.StatusTooManyRequests,
			).WithField("usage", a.Used).WithField("limit", a.Limit))
		}
		return a, nil

	default:
		if !m.ledger.TrialEnabled() {
			return a, m.exhausted(apperrors.NewQuotaExceededError("Premium subscription required", http.StatusForbidden).
				WithField("tier", string(domain.TierFree)))
		}
		a.Limit = domain.FreeTrialQueryLimit
		a.Used = m.ledger.ReadFree(ctx, jar, ip).Count
		if a.Used >= a.Limit {
			return a, m.exhausted(apperrors.NewQuotaExceededError(
				"Free trial used up. Subscribe to keep getting recommendations.",
				http.StatusForbidden,
			).WithField("freeUsed", a.Used).WithField("freeLimit", a.Limit).WithField("tier", string(domain.TierFree)))
		}
		return a, nil
	}
}

// Status reads the caller's current counts without enforcing anything. Free callers
// report no counts when the trial is disabled.
func (m *Meter) Status(ctx context.Context, jar domain.CookieJar, acc domain.Access, ip string) Allowance {
	a := Allowance{Tier: acc.Tier, UserID: acc.UserID, IP: ip}
	switch acc.Tier {
	case domain.TierPremium:
		a.Limit = domain.MonthlyQueryLimit
		a.Used = m.ledger.ReadPremium(jar, acc.UserID).Count
	case domain.TierFree:
		if m.ledger.TrialEnabled() {
			a.Limit = domain.FreeTrialQueryLimit
			a.Used = m.ledger.ReadFree(ctx, jar, ip).Count
		}
	}
	return a
}

// Commit records one more query and returns the updated allowance. Call it only
// after the delegate succeeded.
func (m *Meter) Commit(ctx context.Context, jar domain.CookieJar, a Allowance) Allowance {
	switch a.Tier {
	case domain.TierPremium:
		a.Used++
		m.ledger.WritePremium(jar, a.UserID, a.Used)
	case domain.TierFree:
		a.Used++
		m.ledger.WriteFree(ctx, jar, a.IP, a.Used)
	}
	return a
}

func (m *Meter) exhausted(appErr *apperrors.AppError) *apperrors.AppError {
	metrics.GateRejectionsTotal.WithLabelValues("recommend", "quota").Inc()
	return appErr
}
