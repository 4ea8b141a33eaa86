package handler

import (
	"net/http"

	"scentwise-server/internal/access"
	"scentwise-server/internal/config"
	"scentwise-server/internal/domain"
	"scentwise-server/internal/usage"
)

// AuthHandler handles subscription login and the owner session
type AuthHandler struct {
	authService domain.AuthService
	logger      domain.Logger
	secure      bool
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(container *config.Container) *AuthHandler {
	return &AuthHandler{
		authService: container.AuthService,
		logger:      container.Logger,
		secure:      secureCookies(container),
	}
}

// Login finds a paid order by email and issues the subscription cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	var body struct {
		Email string `json:"email"`
	}
	if appErr := decodeJSON(w, r, maxJSONBodyBytes, &body); appErr != nil {
		writeAppError(w, h.logger, appErr)
		return
	}

	session, err := h.authService.LoginWithEmail(r.Context(), body.Email)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	h.writeSession(w, caller.Jar, session)
}

// VerifySubscription checks an order number and issues the subscription cookie.
func (h *AuthHandler) VerifySubscription(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	var body struct {
		OrderID string `json:"orderId"`
	}
	if appErr := decodeJSON(w, r, maxJSONBodyBytes, &body); appErr != nil {
		writeAppError(w, h.logger, appErr)
		return
	}

	session, err := h.authService.VerifyOrder(r.Context(), body.OrderID)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	h.writeSession(w, caller.Jar, session)
}

// The order was just checked upstream, so the revalidation marker is set too.
func (h *AuthHandler) writeSession(w http.ResponseWriter, jar domain.CookieJar, session *domain.SubscriptionSession) {
	jar.Set(access.SubscriptionSessionCookie(session.CookieValue, h.secure))
	jar.Set(access.RevalidationMarkerCookie(session.Subscription.SubscriptionID, h.secure))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"tier":    string(domain.TierPremium),
		"email":   session.Subscription.Email,
	})
}

// Owner logs the owner in on POST and clears every session cookie on DELETE.
func (h *AuthHandler) Owner(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodDelete {
		for _, name := range []string{access.OwnerCookie, access.SubscriptionCookie, usage.PremiumCookie, access.RevalidationCookie} {
			caller.Jar.Set(access.ExpiredCookie(name, h.secure))
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	var body struct {
		Key string `json:"key"`
	}
	if appErr := decodeJSON(w, r, maxJSONBodyBytes, &body); appErr != nil {
		writeAppError(w, h.logger, appErr)
		return
	}

	value, err := h.authService.LoginOwner(body.Key)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	caller.Jar.Set(access.OwnerSessionCookie(value, h.secure))
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "tier": string(domain.TierOwner)})
}
