package apperrors

import "fmt"

// Code identifies an error category shared across the API.
type Code string

const (
	CodeValidation   Code = "validation_error"
	CodeConflict     Code = "conflict"
	CodeNotFound     Code = "not_found"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeTooMany      Code = "too_many_requests"
	CodeInternal     Code = "internal_error"
)

// AppError pairs an error with the HTTP status and client-safe message the
// error classifier should emit for it.
type AppError struct {
	err     error
	message string
	code    Code
	status  int
}

// New creates an AppError with the supplied details.
func New(message string, status int, code Code, err error) *AppError {
	return &AppError{err: err, message: message, status: status, code: code}
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *AppError) Unwrap() error { return e.err }

// Message returns a safe message for clients.
func (e *AppError) Message() string { return e.message }

// StatusCode returns the HTTP status for this error.
func (e *AppError) StatusCode() int { return e.status }

// Code returns the application-level error code.
func (e *AppError) Code() Code { return e.code }
