package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure so the HTTP layer can pick the right
// status code and callers can decide what is safe to retry.
type Kind string

const (
	KindValidation      Kind = "VALIDATION"       // malformed or missing input
	KindInvalidState    Kind = "INVALID_STATE"    // operation not legal in current lifecycle state
	KindAlreadyReviewed Kind = "ALREADY_REVIEWED" // review race lost, client should refresh
	KindNotFound        Kind = "NOT_FOUND"
	KindForbidden       Kind = "FORBIDDEN"
	KindPayoutCreation  Kind = "PAYOUT_CREATION" // ledger write failed, transition aborted
	KindInternal        Kind = "INTERNAL"
)

// Error carries a Kind alongside the message and optional wrapped cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(format string, args ...interface{}) error {
	return New(KindValidation, format, args...)
}

func InvalidState(format string, args ...interface{}) error {
	return New(KindInvalidState, format, args...)
}

func AlreadyReviewed(format string, args ...interface{}) error {
	return New(KindAlreadyReviewed, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return New(KindNotFound, format, args...)
}

func Forbidden(format string, args ...interface{}) error {
	return New(KindForbidden, format, args...)
}

func PayoutCreation(err error, message string) error {
	return Wrap(KindPayoutCreation, err, message)
}

// KindOf extracts the Kind from an error chain, KindInternal when untyped
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given Kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a domain error to its HTTP status code
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidState:
		return http.StatusBadRequest
	case KindAlreadyReviewed:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the message without the wrapped cause, so internals
// never leak into API responses
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
