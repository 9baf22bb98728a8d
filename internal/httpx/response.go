package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"preventa/internal/dto"
	apperrors "preventa/internal/errors"
)

// Trace starts request scoped logging: every response carries the traceId
// that is attached to the returned logger.
func Trace(logger *zap.Logger, r *http.Request) (string, *zap.Logger) {
	traceID := uuid.New().String()
	return traceID, logger.With(
		zap.String("traceId", traceID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
}

func WriteJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// DecodeJSON reads the body into dst and validates it.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
	}
	return dto.Validate(dst)
}

// StatusFor maps an application error to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	if _, ok := apperrors.IsValidationError(err); ok {
		return http.StatusBadRequest, "VALIDATION_ERROR"
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return http.StatusNotFound, "NOT_FOUND"
	}
	if be, ok := apperrors.IsBusinessRuleError(err); ok {
		switch be.Code {
		case apperrors.CodeAuthorizationExceeded:
			return http.StatusForbidden, string(be.Code)
		case apperrors.CodeAlreadyEvaluated:
			return http.StatusConflict, string(be.Code)
		case apperrors.CodeInsufficientCredit:
			return http.StatusUnprocessableEntity, string(be.Code)
		default:
			return http.StatusUnprocessableEntity, string(be.Code)
		}
	}
	if _, ok := apperrors.IsForbiddenError(err); ok {
		return http.StatusForbidden, "FORBIDDEN"
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		return http.StatusConflict, "CONFLICT"
	}
	if _, ok := apperrors.IsConcurrencyConflictError(err); ok {
		return http.StatusConflict, "CONCURRENCY_CONFLICT"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// WriteError renders err. Unexpected errors are logged and hidden behind a
// generic message.
func WriteError(w http.ResponseWriter, logger *zap.Logger, traceID string, err error) {
	status, code := StatusFor(err)

	resp := dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	}

	switch {
	case status == http.StatusInternalServerError:
		logger.Error("unexpected error", zap.Error(err))
		resp.Message = "an unexpected error occurred"
	case status == http.StatusConflict && code == "CONCURRENCY_CONFLICT":
		logger.Warn("request lost a lock race", zap.Error(err))
		resp.Message = "the resource is busy, retry the request"
	default:
		logger.Info("request rejected", zap.String("code", code), zap.String("reason", err.Error()))
	}

	if ve, ok := apperrors.IsValidationError(err); ok {
		resp.Details = ve.Details
	}

	WriteJSON(w, logger, status, resp)
}
