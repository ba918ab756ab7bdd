package api

import (
	"errors"
	"log/slog"
	"net/http"

	shared "github.com/anandgupta07/coach-sub000/internal/shared/domain"
	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

// APIError is the JSON body of every error response.
type APIError struct {
	Status  int                 `json:"-"`
	Kind    string              `json:"kind"`
	Message string              `json:"message"`
	Fields  []shared.FieldError `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	return e.Kind + ": " + e.Message
}

// Common API errors
var (
	ErrBadRequest = &APIError{
		Status:  http.StatusBadRequest,
		Kind:    "bad_request",
		Message: "invalid request",
	}
	ErrUnauthorized = &APIError{
		Status:  http.StatusUnauthorized,
		Kind:    "unauthorized",
		Message: "authentication required",
	}
	ErrForbidden = &APIError{
		Status:  http.StatusForbidden,
		Kind:    "forbidden",
		Message: "this action is restricted to coaches",
	}
	ErrInternalServer = &APIError{
		Status:  http.StatusInternalServerError,
		Kind:    "internal_error",
		Message: "internal server error",
	}
)

var kindStatus = map[shared.Kind]int{
	shared.KindNotFound:          http.StatusNotFound,
	shared.KindExpired:           http.StatusGone,
	shared.KindUsageLimitReached: http.StatusConflict,
	shared.KindMinimumCartNotMet: http.StatusUnprocessableEntity,
	shared.KindValidation:        http.StatusUnprocessableEntity,
	shared.KindStorage:           http.StatusServiceUnavailable,
	shared.KindInvalidTransition: http.StatusConflict,
}

// toAPIError maps err onto an APIError. Domain errors keep their kind and
// message; anything else becomes an opaque internal error.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var de *shared.Error
	if errors.As(err, &de) {
		status, ok := kindStatus[de.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		return &APIError{Status: status, Kind: string(de.Kind), Message: de.Message, Fields: de.Fields}
	}
	return ErrInternalServer
}

// writeError writes err as a JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			observability.ErrorKey, err,
		)
	}
	writeJSON(w, apiErr.Status, apiErr)
}

func badRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Kind: ErrBadRequest.Kind, Message: message}
}
