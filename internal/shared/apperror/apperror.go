package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// AppError is an error safe to show to API clients. Err holds the internal
// cause and is never rendered.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    any
	Err        error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches another AppError with the same code and message, so a sentinel
// still matches after WithCause or WithDetails copied it.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithCause returns a copy of e carrying err.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// WithDetails returns a copy of e carrying client-visible details.
func (e *AppError) WithDetails(details any) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// Wrap returns nil for a nil err.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return New(code, message, httpStatus).WithCause(err)
}

var (
	ErrInternal        = New(CodeInternalError, "An unexpected error occurred", http.StatusInternalServerError)
	ErrUnauthorized    = New(CodeUnauthorized, "Authentication is required", http.StatusUnauthorized)
	ErrForbidden       = New(CodeForbidden, "You do not have permission to access this resource", http.StatusForbidden)
	ErrInvalidToken    = New(CodeUnauthorized, "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired    = New(CodeUnauthorized, "Token has expired", http.StatusUnauthorized)
	ErrTooManyRequests = New(CodeTooManyRequests, "Too many requests", http.StatusTooManyRequests)
)
