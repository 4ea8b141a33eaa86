package handler

import (
	"net/http"

	"scentwise-server/internal/config"
	"scentwise-server/internal/domain"
)

// DebugHandler exposes the owner-only configuration report.
type DebugHandler struct {
	authService        domain.AuthService
	diagnosticsService domain.DiagnosticsService
}

func NewDebugHandler(container *config.Container) *DebugHandler {
	return &DebugHandler{
		authService:        container.AuthService,
		diagnosticsService: container.DiagnosticsService,
	}
}

// Config requires ?key= to match the owner key.
func (h *DebugHandler) Config(w http.ResponseWriter, r *http.Request) {
	if !h.authService.AuthorizeOwnerKey(r.URL.Query().Get("key")) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, h.diagnosticsService.Report(r.Context()))
}
