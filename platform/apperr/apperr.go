// Package apperr provides standardized domain error types for the application.
// Domain services return these typed errors, and the HTTP layer middleware
// automatically maps them to appropriate HTTP status codes.
package apperr

import (
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates a resource was not found.
	KindNotFound
	// KindValidation indicates invalid input data.
	KindValidation
	// KindConflict indicates a conflict with existing state (e.g., duplicate).
	KindConflict
	// KindForbidden indicates the action is not allowed for the user.
	KindForbidden
	// KindUnauthorized indicates authentication is required or failed.
	KindUnauthorized
	// KindBadRequest indicates a malformed or invalid request.
	KindBadRequest
	// KindInternal indicates an unexpected internal error.
	KindInternal
	// KindGone indicates a resource that existed but is no longer available.
	KindGone
	// KindBadSubmission indicates a webhook submission that cannot be
	// processed: missing slots, an unparseable slot, or an unknown status.
	KindBadSubmission
	// KindPastSlot indicates a submission with a slot that lies entirely in
	// the past. A specialization of KindBadSubmission for HTTP purposes.
	KindPastSlot
	// KindUpstreamTransient indicates an HTTP or transport failure talking
	// to the upstream meeting API.
	KindUpstreamTransient
	// KindUpstreamShape indicates a successful HTTP call whose response
	// body was empty or did not carry the expected payload.
	KindUpstreamShape
	// KindLedgerFailure indicates an I/O or serialization failure writing
	// the reservation ledger.
	KindLedgerFailure
	// KindConfigMissing indicates a required startup configuration value
	// was absent or invalid.
	KindConfigMissing
)

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Op      string      // Operation that failed (optional)
	Err     error       // Underlying error (optional)
	Details interface{} // Additional details for response (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest, KindBadSubmission, KindPastSlot:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInternal, KindUpstreamTransient, KindUpstreamShape, KindLedgerFailure:
		return http.StatusInternalServerError
	case KindGone:
		return http.StatusGone
	default:
		return http.StatusBadRequest
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp sets the operation on the error in place and returns it.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails sets additional details on the error in place and returns it.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// Convenience constructors for common error types.

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Conflict creates a conflict error (e.g., duplicate resource).
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Forbidden creates a forbidden error.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// Gone creates a gone error (resource expired/removed).
func Gone(message string) *Error {
	return New(KindGone, message)
}

// BadSubmission creates an error for a webhook submission that cannot be
// processed. The message is formatted with fmt.Sprintf semantics.
func BadSubmission(format string, args ...interface{}) *Error {
	return New(KindBadSubmission, fmt.Sprintf(format, args...))
}

// PastSlot creates an error for a submission with a slot that lies entirely
// in the past.
func PastSlot(format string, args ...interface{}) *Error {
	return New(KindPastSlot, fmt.Sprintf(format, args...))
}

// UpstreamTransient creates an error for an HTTP or transport failure
// talking to the upstream meeting API.
func UpstreamTransient(err error, format string, args ...interface{}) *Error {
	return Wrap(KindUpstreamTransient, fmt.Sprintf(format, args...), err)
}

// UpstreamShape creates an error for a successful upstream call whose
// response body did not carry the expected payload.
func UpstreamShape(format string, args ...interface{}) *Error {
	return New(KindUpstreamShape, fmt.Sprintf(format, args...))
}

// LedgerFailure creates an error for an I/O or serialization failure
// writing the reservation ledger.
func LedgerFailure(err error, format string, args ...interface{}) *Error {
	return Wrap(KindLedgerFailure, fmt.Sprintf(format, args...), err)
}

// ConfigMissing creates a startup-time configuration error.
func ConfigMissing(format string, args ...interface{}) *Error {
	return New(KindConfigMissing, fmt.Sprintf(format, args...))
}

// GetKind extracts the error kind from an error.
// Returns KindUnknown if the error is not an *Error.
func GetKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
