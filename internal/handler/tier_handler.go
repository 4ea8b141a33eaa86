package handler

import (
	"net/http"

	"scentwise-server/internal/access"
	"scentwise-server/internal/config"
	"scentwise-server/internal/gate"
)

// TierHandler reports the caller's tier and usage.
type TierHandler struct {
	revalidator *access.Revalidator
	meter       *gate.Meter
}

func NewTierHandler(container *config.Container) *TierHandler {
	return &TierHandler{revalidator: container.Revalidator, meter: container.Meter}
}

// CheckTier returns {tier, email?, usage?, limit?, freeUsed?, freeLimit?}. Premium
// callers are revalidated upstream at most once a day.
func (h *TierHandler) CheckTier(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	acc := caller.Access
	if h.revalidator != nil {
		acc = h.revalidator.Revalidate(r.Context(), caller.Jar, acc)
	}

	body := map[string]interface{}{"tier": string(acc.Tier)}
	if h.meter != nil {
		body = h.meter.Status(r.Context(), caller.Jar, acc, caller.IP).Report()
	}
	if acc.IsPremium() && acc.Email != "" {
		body["email"] = acc.Email
	}
	writeJSON(w, http.StatusOK, body)
}
