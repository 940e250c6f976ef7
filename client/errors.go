package client

import (
	"fmt"
	"net/http"
)

// Kind is the closed taxonomy of request failures. Every error returned by
// the pipeline carries exactly one Kind.
type Kind string

const (
	KindTimeout      Kind = "timeout"
	KindNetwork      Kind = "network"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
	KindServer       Kind = "server"
	KindUnknown      Kind = "unknown"
)

// FieldError is a single field-level failure reported by the backend on
// validation errors.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the classified form of a failed request. Callers of the pipeline
// never see a raw transport error; they always receive an *Error.
type Error struct {
	Kind        Kind
	HTTPStatus  int
	Message     string
	FieldErrors []FieldError

	cause error
}

func (e *Error) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is lets errors.Is match two classified errors by Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// AsError converts any error to a classified error. Errors that are already
// classified pass through unchanged; anything else becomes KindUnknown.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if cerr, ok := err.(*Error); ok {
		return cerr
	}
	return &Error{Kind: KindUnknown, Message: err.Error(), cause: err}
}

// NewValidationError builds a client-side validation error, used by facades
// that reject a request before it reaches the wire.
func NewValidationError(fieldErrors []FieldError) *Error {
	msg := defaultMessage(KindValidation)
	if len(fieldErrors) > 0 {
		msg = fieldErrors[0].Message
	}
	return &Error{
		Kind:        KindValidation,
		Message:     msg,
		FieldErrors: fieldErrors,
	}
}

// defaultMessage is the user-facing message policy for each kind. The
// backend-supplied message wins only for KindUnknown and for validation
// field errors.
func defaultMessage(kind Kind) string {
	switch kind {
	case KindTimeout:
		return "the request timed out, please try again"
	case KindNetwork:
		return "unable to reach the server, check your connection"
	case KindUnauthorized:
		return "session expired, please sign in again"
	case KindForbidden:
		return "insufficient permission for this operation"
	case KindNotFound:
		return "resource not found"
	case KindValidation:
		return "the submitted data is invalid"
	case KindServer:
		return "server error, please retry later"
	default:
		return "an unexpected error occurred"
	}
}

// kindForStatus maps an HTTP status code to a taxonomy kind. Each status
// maps to exactly one kind.
func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusInternalServerError:
		return KindServer
	default:
		return KindUnknown
	}
}
