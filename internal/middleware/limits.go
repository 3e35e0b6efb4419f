package middleware

import (
	"net/http"
	"time"

	"inventorypro/internal/domain"
)

// DefaultMaxBodySize caps request bodies. POS payloads are tiny; anything
// near this limit is malformed or hostile.
const DefaultMaxBodySize = 1 << 20 // 1MB

// MaxBodySize rejects oversized request bodies with 413 and wraps the rest
// with http.MaxBytesReader.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respondWithError(w, http.StatusRequestEntityTooLarge, domain.ETOOLARGE,
					"Request body too large.")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout bounds request processing.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}
