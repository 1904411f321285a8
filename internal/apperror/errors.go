// Package apperror provides the error type returned by almanac services.
// An AppError carries an HTTP status code and a message that is safe to
// show to API clients; the Echo error handler turns it into a response.
//
// Infrastructure errors (Redis, filesystem) never reach clients directly.
// Wrap them with NewInternal.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// AppError is a service error with an HTTP status and a client-safe message.
type AppError struct {
	// Code is the HTTP status code.
	Code int `json:"-"`

	// Type is a machine-readable classifier such as "not_found".
	Type string `json:"type"`

	// Message is safe to return to the client.
	Message string `json:"message"`

	// Fields holds per-field problems for validation failures.
	Fields map[string]string `json:"fields,omitempty"`

	// Internal is the underlying cause, logged but never returned.
	Internal error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

// --- Constructors ---

// NewNotFound creates a 404 error.
func NewNotFound(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Type: "not_found", Message: message}
}

// NewBadRequest creates a 400 error for requests that cannot be decoded.
func NewBadRequest(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Type: "bad_request", Message: message}
}

// NewUnauthorized creates a 401 error.
func NewUnauthorized(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Type: "unauthorized", Message: message}
}

// NewTooManyRequests creates a 429 error.
func NewTooManyRequests(message string) *AppError {
	return &AppError{Code: http.StatusTooManyRequests, Type: "rate_limited", Message: message}
}

// NewValidation creates a 422 error for well-formed but unacceptable input.
func NewValidation(message string) *AppError {
	return &AppError{Code: http.StatusUnprocessableEntity, Type: "validation_error", Message: message}
}

// NewInvalidCalendar creates a 422 error from a calendar validation failure.
// Field errors from ozzo-validation are copied into Fields.
func NewInvalidCalendar(err error) *AppError {
	appErr := NewValidation("calendar configuration is inconsistent")
	var fields validation.Errors
	if errors.As(err, &fields) {
		appErr.Fields = make(map[string]string, len(fields))
		for k, v := range fields {
			appErr.Fields[k] = v.Error()
		}
	} else if err != nil {
		appErr.Fields = map[string]string{"calendar": err.Error()}
	}
	return appErr
}

// NewInternal creates a 500 error. Only a generic message reaches clients.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     "internal_error",
		Message:  "An unexpected error occurred. Please try again.",
		Internal: err,
	}
}

// SafeMessage returns a client-safe message for any error.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "an unexpected error occurred"
}

// SafeCode returns the HTTP status for any error, 500 when unknown.
func SafeCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
