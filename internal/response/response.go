// Package response provides standardized HTTP response helpers.
package response

import (
	"encoding/json"
	"net/http"
)

// Error codes used across the API.
const (
	ErrCodeValidationError    = "VALIDATION_ERROR"
	ErrCodeParseError         = "PARSE_ERROR"
	ErrCodePreconditionFailed = "PRECONDITION_FAILED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	ErrCodeLimitExceeded      = "LIMIT_EXCEEDED"
	ErrCodeRefreshFailed      = "REFRESH_FAILED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// APIError is the structured error body every failing endpoint returns.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError in the standard response format.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// JSON writes a JSON response.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteErrorWithDetails(w, status, code, message, nil)
}

// WriteErrorWithDetails writes a JSON error response with additional details.
func WriteErrorWithDetails(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	JSON(w, status, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Common error response helpers

// WriteValidationError writes a 400 validation error.
func WriteValidationError(w http.ResponseWriter, message string, details map[string]interface{}) {
	WriteErrorWithDetails(w, http.StatusBadRequest, ErrCodeValidationError, message, details)
}

// WriteParseError writes a 422 for malformed ICS or date/duration text.
func WriteParseError(w http.ResponseWriter, message string, details map[string]interface{}) {
	WriteErrorWithDetails(w, http.StatusUnprocessableEntity, ErrCodeParseError, message, details)
}

// WritePreconditionFailed writes a 412 caller-misuse error.
func WritePreconditionFailed(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusPreconditionFailed, ErrCodePreconditionFailed, message)
}

// WriteNotFound writes a 404 not found error.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// WriteInternalError writes a 500 internal error.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, message)
}
