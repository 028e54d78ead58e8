package response

import (
	"encoding/json"
	"net/http"

	"github.com/agriguru/agriguru-backend/pkg/logger"
)

// ErrorResponse is the structured JSON error body every service returns.
// Internal exception text never reaches the client; Error carries a
// human-readable message, Code a machine-readable category.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error categories shared across services
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeAuthFailed      = "AUTH_FAILED"
	CodeDeliveryFailed  = "DELIVERY_FAILED"
	CodeStorageError    = "STORAGE_ERROR"
	CodeRateLimit       = "RATE_LIMIT_EXCEEDED"
	CodeInternalError   = "INTERNAL_ERROR"
)

func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// Convenience helpers for the common cases
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeValidationError)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message, CodeConflict)
}

func AuthFailed(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeAuthFailed)
}

func DeliveryFailed(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, message, CodeDeliveryFailed)
}

func StorageError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeStorageError)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}
