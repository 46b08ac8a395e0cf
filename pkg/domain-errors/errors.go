// Package dErrors provides coded domain errors.
//
// Services return these so transport layers can translate outcomes to
// HTTP statuses without string matching. Infrastructure facts (row
// missing, key conflict) use pkg/platform/sentinel instead; services
// wrap sentinels into coded errors at the feature boundary.
package dErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error outcome.
type Code string

const (
	// CodeValidation covers malformed identity fields and incomplete or
	// over-limit image sets. Always recoverable by the submitter.
	CodeValidation Code = "validation_failed"

	// CodeForbidden means the actor lacks permission for the action.
	CodeForbidden Code = "forbidden"

	// CodeInvalidTransition means the action is not legal from the
	// record's current state.
	CodeInvalidTransition Code = "invalid_transition"

	// CodeRegionAssigned means a region already has a different active
	// administrator.
	CodeRegionAssigned Code = "region_already_assigned"

	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal_error"
)

// Error is a domain error carrying a classification code, a
// user-presentable message, and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err
// yields nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the user-presentable message from err. Uncoded
// errors yield a generic message so internals never leak to clients.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "something went wrong, please try again"
}

// ToHTTPStatus maps a code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidTransition, CodeRegionAssigned, CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
