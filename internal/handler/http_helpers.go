package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"scentwise-server/internal/config"
	"scentwise-server/internal/domain"
	"scentwise-server/internal/gate"
	apperrors "scentwise-server/pkg/errors"
)

const (
	maxJSONBodyBytes      = 64 << 10
	maxRecommendBodyBytes = 6 << 20
	maxWebhookBodyBytes   = 1 << 20
)

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAppError renders service errors. Anything that is not an AppError is logged
// and reported as a generic 500.
func writeAppError(w http.ResponseWriter, logger domain.Logger, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.StatusCode >= http.StatusInternalServerError && appErr.Cause != nil {
			logger.Error("Request failed", appErr.Cause, "type", string(appErr.Type))
		}
		gate.WriteError(w, appErr)
		return
	}
	logger.Error("Unhandled error", err)
	writeError(w, http.StatusInternalServerError, "Server error")
}

// decodeJSON reads at most limit bytes of JSON into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst interface{}) *apperrors.AppError {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &apperrors.AppError{
				Type:       apperrors.ErrorTypeValidation,
				Message:    "Request body too large",
				StatusCode: http.StatusRequestEntityTooLarge,
			}
		}
		return apperrors.NewValidationError("Invalid request body")
	}
	return nil
}

// callerOf returns the caller the gate attached. Handlers are only mounted behind
// a gate, so a missing caller is a wiring error.
func callerOf(w http.ResponseWriter, r *http.Request) (*gate.Caller, bool) {
	caller, ok := gate.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Server error")
	}
	return caller, ok
}

func secureCookies(container *config.Container) bool {
	return container.Config != nil && container.Config.IsProduction()
}
