// Package middleware holds the HTTP middleware shared by the API routes.
package middleware

import (
	"encoding/json"
	"net/http"
)

// contextKey is the private type for context values set by this package.
type contextKey string

// respondWithError writes a minimal JSON error body. Handlers have a richer
// error responder; this one exists for failures that happen before a handler
// runs (rate limits, body limits, auth guards).
func respondWithError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
