package handler

import (
	"net/http"

	"scentwise-server/internal/config"
	"scentwise-server/internal/domain"
	"scentwise-server/internal/gate"
	"scentwise-server/internal/service"
)

// RecommendHandler serves metered AI recommendations.
type RecommendHandler struct {
	recommendService domain.RecommendService
	meter            *gate.Meter
	logger           domain.Logger
}

func NewRecommendHandler(container *config.Container) *RecommendHandler {
	return &RecommendHandler{
		recommendService: container.RecommendService,
		meter:            container.Meter,
		logger:           container.Logger,
	}
}

// Recommend checks quota, calls the AI delegate and records usage only when the
// delegate produced a result.
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	var req domain.RecommendRequest
	if appErr := decodeJSON(w, r, maxRecommendBodyBytes, &req); appErr != nil {
		writeAppError(w, h.logger, appErr)
		return
	}

	allowance, appErr := h.meter.Check(r.Context(), caller.Jar, caller.Access, caller.IP)
	if appErr != nil {
		gate.WriteError(w, appErr)
		return
	}

	result, err := h.recommendService.Recommend(r.Context(), &req)
	service.RecordRecommendation(caller.Access.Tier, err == nil)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	allowance = h.meter.Commit(r.Context(), caller.Jar, allowance)
	body := allowance.Report()
	body["result"] = result
	writeJSON(w, http.StatusOK, body)
}
