package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the typed failure returned by store mutators and service calls.
// The gateway maps it onto an HTTP status and a stable machine code.
type Error struct {
	Status  int
	Code    string
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.wrapped)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.wrapped }

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func Validation(message string) *Error {
	return New(http.StatusBadRequest, "validation_error", message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, "unauthorized", message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, "forbidden", message)
}

// CSRF is the specific 403 for a missing or mismatched CSRF token.
func CSRF() *Error {
	return New(http.StatusForbidden, "csrf_required", "missing or invalid CSRF token")
}

// Locked carries a retry hint for throttled logins.
func Locked(retryMinutes int) *Error {
	return New(http.StatusTooManyRequests, "locked_out",
		fmt.Sprintf("too many failed attempts, retry after %d minutes", retryMinutes))
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, "conflict", message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, "not_found", message)
}

func Internal(err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "internal error",
		wrapped: err,
	}
}

// From normalizes any error into an *Error; unknown errors become 500s.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
