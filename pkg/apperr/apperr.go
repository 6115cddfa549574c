package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping and client handling.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindForbidden  Kind = "FORBIDDEN"
	KindAuth       Kind = "AUTH"
	KindUpstream   Kind = "UPSTREAM"
	KindConfig     Kind = "CONFIG"
	KindInternal   Kind = "INTERNAL"

	// KindNetwork is only produced client-side, when the server
	// could not be reached at all.
	KindNetwork Kind = "NETWORK"
)

// Error is the single error shape used across server and client.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func Forbidden(message string) *Error  { return New(KindForbidden, message) }
func Auth(message string) *Error       { return New(KindAuth, message) }
func Upstream(message string) *Error   { return New(KindUpstream, message) }
func Config(message string) *Error     { return New(KindConfig, message) }
func Internal(message string) *Error   { return New(KindInternal, message) }
func Network(message string) *Error    { return New(KindNetwork, message) }

func NotFound(resource string) *Error {
	return New(KindNotFound, fmt.Sprintf("%s not found", resource))
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the status code its kind carries.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindAuth:
		return http.StatusUnauthorized
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FromStatus builds the client-side error for a server response code.
func FromStatus(status int, message string) *Error {
	switch status {
	case http.StatusBadRequest:
		return Validation(message)
	case http.StatusNotFound:
		return New(KindNotFound, message)
	case http.StatusForbidden:
		return Forbidden(message)
	case http.StatusUnauthorized:
		return Auth(message)
	case http.StatusBadGateway:
		return Upstream(message)
	default:
		return Internal(message)
	}
}
