package handler

import (
	"errors"
	"io"
	"net/http"

	"scentwise-server/internal/config"
	"scentwise-server/internal/domain"
)

const signatureHeader = "X-Signature"

type WebhookHandler struct {
	webhookService domain.WebhookService
	logger         domain.Logger
}

func NewWebhookHandler(container *config.Container) *WebhookHandler {
	return &WebhookHandler{webhookService: container.WebhookService, logger: container.Logger}
}

// Receive verifies the signature over the exact request bytes. Every authenticated
// delivery is answered 200 so the provider stops retrying.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.webhookService.Handle(r.Context(), raw, r.Header.Get(signatureHeader)); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
