// Package api provides the leaderboard HTTP handlers, router and the
// standardized JSON error envelope.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/onnwee/leaderboard/internal/middleware"
)

// Common error codes used throughout the API.
const (
	// ErrCodeValidation indicates a query parameter failed validation.
	ErrCodeValidation = "validation_error"

	// ErrCodeInvalidCursor indicates a cursor token that cannot be decoded.
	ErrCodeInvalidCursor = "invalid_cursor"

	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound = "not_found"

	// ErrCodeRateLimited indicates rate limit exceeded.
	ErrCodeRateLimited = "rate_limit_exceeded"

	// ErrCodeMethodNotAllowed indicates an unsupported HTTP method.
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// ErrCodeBadRequest indicates a malformed request.
	ErrCodeBadRequest = "bad_request"

	// ErrCodeUnavailable indicates the snapshot source could not be read.
	ErrCodeUnavailable = "snapshot_unavailable"

	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal = "internal_error"
)

// ErrorResponse represents the standard error response format:
// {"error": {"code": "...", "message": "..."}}
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code and human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes a standardized JSON error response and records code
// for the request log line.
//
// Example:
//
//	api.WriteError(w, r.Context(), http.StatusBadRequest, api.ErrCodeInvalidCursor, "Cursor is malformed")
func WriteError(w http.ResponseWriter, ctx context.Context, status int, code, message string) {
	middleware.SetErrorCode(ctx, code)

	data, err := json.Marshal(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal error response", "error", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}

// StatusCodeMapping returns the HTTP status code for an error code.
func StatusCodeMapping(code string) int {
	switch code {
	case ErrCodeValidation, ErrCodeInvalidCursor, ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, ctx context.Context, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
