package handler

import (
	"net/http"

	"scentwise-server/internal/config"
	"scentwise-server/internal/domain"
)

type CheckoutHandler struct {
	checkoutService domain.CheckoutService
	logger          domain.Logger
}

func NewCheckoutHandler(container *config.Container) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: container.CheckoutService, logger: container.Logger}
}

// CreateCheckout returns a hosted checkout url.
func (h *CheckoutHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	url, err := h.checkoutService.CreateCheckout(r.Context())
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
