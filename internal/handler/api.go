// Package handler implements the JSON API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"inventorypro/internal/domain"
	"inventorypro/internal/middleware"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RespondJSON writes v as a JSON response.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ETOOLARGE:
		return http.StatusRequestEntityTooLarge
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse writes a domain error with the right status code. Internal
// errors log their cause but show users a generic message.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsValidationError(err) {
		ValidationErrorResponse(w, r, err)
		return
	}

	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)

	if status >= http.StatusInternalServerError {
		middleware.GetLogger(r.Context()).Error("request failed",
			slog.String("op", domain.ErrorOp(err)),
			slog.String("error", err.Error()))
	}

	if !acceptsJSON(r) {
		http.Error(w, domain.ErrorMessage(err), status)
		return
	}

	RespondJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": domain.ErrorMessage(err),
		},
	})
}

// ValidationErrorResponse writes field-level validation failures. Falls back
// to ErrorResponse for other errors.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	fields := domain.GetValidationFields(err)
	if fields == nil {
		ErrorResponse(w, r, err)
		return
	}

	if !acceptsJSON(r) {
		http.Error(w, "validation failed", http.StatusBadRequest)
		return
	}

	RespondJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":    domain.EINVALID,
			"message": "validation failed",
			"fields":  fields,
		},
	})
}

// NotFoundResponse writes a 404.
func NotFoundResponse(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(w, r, domain.NotFound("http.route", "resource", r.URL.Path))
}

// acceptsJSON reports whether the client wants a JSON response. API routes
// always qualify.
func acceptsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// DecodeValid decodes a JSON request body into dst and validates it.
// Malformed JSON maps to EINVALID; tag failures map to a ValidationError.
func DecodeValid(r *http.Request, dst any) error {
	const op = "http.decode"

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.Errorf(domain.ETOOLARGE, op, "request body too large")
		}
		return domain.Invalid(op, "invalid request body")
	}

	if err := validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return domain.Internal(err, op, "validation setup failed")
		}

		var verr error
		for _, fe := range err.(validator.ValidationErrors) {
			verr = domain.AddFieldError(verr, strings.ToLower(fe.Field()), validationMessage(fe))
		}
		return verr
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// UnwrapCollection normalizes a payload that may be either a bare JSON array
// or an object wrapping the array under key. This is the only place that
// tolerance lives; everything downstream sees the array.
func UnwrapCollection(body io.Reader, key string) (json.RawMessage, error) {
	const op = "http.unwrap_collection"

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, domain.Invalid(op, "failed to read request body")
	}

	trimmed := strings.TrimSpace(string(raw))
	switch {
	case strings.HasPrefix(trimmed, "["):
		return json.RawMessage(trimmed), nil
	case strings.HasPrefix(trimmed, "{"):
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, domain.Invalid(op, "invalid request body")
		}
		inner, ok := wrapper[key]
		if !ok {
			return nil, domain.Invalid(op, fmt.Sprintf("missing %q array", key))
		}
		if !strings.HasPrefix(strings.TrimSpace(string(inner)), "[") {
			return nil, domain.Invalid(op, fmt.Sprintf("%q must be an array", key))
		}
		return inner, nil
	default:
		return nil, domain.Invalid(op, "expected a JSON array or wrapped array")
	}
}
