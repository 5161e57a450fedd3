package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error        string               `json:"error"`
	Fields       map[string]string    `json:"fields,omitempty"`
	Notification *domain.Notification `json:"notification,omitempty"`
}

// maxJSONBody bounds every JSON request body.
const maxJSONBody = 1 << 20

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// handleServiceError maps domain errors to HTTP responses. A non-nil
// notification is included in the body.
func handleServiceError(w http.ResponseWriter, err error, n *domain.Notification, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var formInvalid *domain.ErrFormInvalid
	var unsupported *domain.ErrUnsupportedMedia
	var tooLarge *domain.ErrPayloadTooLarge
	var expired *domain.ErrConfirmationExpired
	var external *domain.ErrExternalService
	var storage *domain.ErrStorage

	resp := errorResponse{Error: err.Error(), Notification: n}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &formInvalid):
		logger.Debug("form invalid", zap.String("error", err.Error()))
		status = http.StatusUnprocessableEntity
		resp.Fields = formInvalid.Fields
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		status = http.StatusBadRequest
		resp.Error = validation.Message
		resp.Fields = map[string]string{validation.Field: validation.Message}
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		status = http.StatusNotFound
	case errors.As(err, &unsupported):
		logger.Debug("unsupported media", zap.String("content_type", unsupported.ContentType))
		status = http.StatusUnsupportedMediaType
	case errors.As(err, &tooLarge):
		logger.Debug("payload too large", zap.Int64("size", tooLarge.Size))
		status = http.StatusRequestEntityTooLarge
	case errors.As(err, &expired):
		logger.Debug("confirmation expired")
		status = http.StatusGone
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		status = http.StatusServiceUnavailable
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		status = http.StatusGatewayTimeout
	case errors.As(err, &external):
		logger.Error("external service error", zap.Error(err))
		status = http.StatusBadGateway
	case errors.Is(err, service.ErrClosed):
		status = http.StatusServiceUnavailable
	case errors.As(err, &storage):
		logger.Error("storage error", zap.Error(err))
		resp.Error = "storage error"
	default:
		logger.Error("unhandled error", zap.Error(err))
		resp.Error = "internal server error"
	}

	writeJSON(w, status, resp)
}
