// Package apierr defines the error kinds surfaced by the HTTP API and the single
// place where they are rendered as responses.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hearthstone-labs/crm/internal/logging"
)

// Kind classifies an API failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Status maps the kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is an API failure with a kind, a caller-facing message and optional details.
// Cause is logged for internal errors and never written to the response.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Validation reports malformed or missing input. message is "Validation failed" or
// "Query validation failed"; details lists the individual violations.
func Validation(message string, details any, cause error) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details, Cause: cause}
}

// Unauthenticated reports a missing or invalid credential.
func Unauthenticated(cause error) *Error {
	return &Error{Kind: KindUnauthenticated, Message: "Unauthorized", Cause: cause}
}

// Forbidden reports an authenticated caller lacking a required role.
func Forbidden() *Error {
	return &Error{Kind: KindForbidden, Message: "Forbidden"}
}

// NotFound reports a missing resource, e.g. NotFound("Client").
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// Internal wraps any unexpected failure.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Cause: cause}
}

// KindOf returns the kind of err; anything that is not an *Error is internal.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindInternal
}

type messageBody struct {
	Message string `json:"message"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// Write renders err as a JSON response. Auth failures use {"message": ...}; everything
// else uses {"error": ...}. Internal errors are logged and rendered without detail.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Internal(err)
	}

	var body any
	switch apiErr.Kind {
	case KindUnauthenticated, KindForbidden:
		body = messageBody{Message: apiErr.Message}
	case KindValidation:
		body = errorBody{Error: apiErr.Message, Details: apiErr.Details}
	case KindNotFound:
		body = errorBody{Error: apiErr.Message}
	default:
		logging.FromContext(r.Context()).WithError(apiErr.Cause).Error("internal error")
		body = errorBody{Error: "Internal server error"}
	}

	WriteJSON(w, apiErr.Kind.Status(), body)
}

// WriteJSON writes body as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
