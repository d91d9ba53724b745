// Package httpx holds the JSON response helpers shared by every service.
// Error responses carry a machine-readable category and a human-readable
// message; internals are never exposed to callers.
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error categories used across the services.
const (
	CategoryValidation      = "ValidationError"
	CategoryNotFound        = "NotFound"
	CategoryConflict        = "Conflict"
	CategoryUnauthenticated = "Unauthenticated"
	CategoryTokenExpired    = "TokenExpired"
	CategoryInvalidSig      = "InvalidSignature"
	CategoryAuthFailed      = "AuthenticationFailed"
	CategoryForbidden       = "Forbidden"
	CategoryUpstream        = "UpstreamFailure"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSON writes v as an application/json response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response body", "error", err)
	}
}

// Error writes the standard error envelope.
func Error(w http.ResponseWriter, status int, category, message string) {
	JSON(w, status, errorResponse{Error: category, Message: message})
}

// NotFoundHandler is the JSON 404 fallback registered on every router.
func NotFoundHandler(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusNotFound, CategoryNotFound, "Endpoint not found")
}
