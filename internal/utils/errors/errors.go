package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Categories. Every AppError wraps one so callers can branch on the kind
// of failure with errors.Is without knowing the code.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("resource conflict")
	ErrRateLimited    = errors.New("rate limited")
	ErrBadGateway     = errors.New("upstream failure")
	ErrServiceUnavail = errors.New("service unavailable")
)

// categoryStatus is consulted, in order, for errors that are not AppErrors.
var categoryStatus = []struct {
	category error
	status   int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrBadRequest, http.StatusBadRequest},
	{ErrConflict, http.StatusConflict},
	{ErrRateLimited, http.StatusTooManyRequests},
	{ErrBadGateway, http.StatusBadGateway},
	{ErrServiceUnavail, http.StatusServiceUnavailable},
}

// AppError is an error the HTTP edge can render: a stable machine code, a
// client-safe message and the status to send.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	StatusCode int            `json:"-"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// ErrorResponse is the body of every non-2xx JSON response:
// {"error":{"code":...,"message":...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the client-visible part of an AppError.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ToResponse drops the wrapped cause, which stays server side.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: e.Code, Message: e.Message, Details: e.Details}}
}

// WithDetails attaches structured context, such as the offending field.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func build(status int, category error, code, fallbackCode, message, fallbackMessage string) *AppError {
	if code == "" {
		code = fallbackCode
	}
	if message == "" {
		message = fallbackMessage
	}
	return &AppError{Code: code, Message: message, StatusCode: status, Err: category}
}

// NotFound names the missing resource, e.g. NotFound("order").
func NotFound(resource string) *AppError {
	return build(http.StatusNotFound, ErrNotFound, "NOT_FOUND", "", resource+" not found", "")
}

func Unauthorized(message string) *AppError {
	return build(http.StatusUnauthorized, ErrUnauthorized, "UNAUTHORIZED", "", message, "authentication required")
}

func Forbidden(message string) *AppError {
	return build(http.StatusForbidden, ErrForbidden, "FORBIDDEN", "", message, "access denied")
}

func BadRequest(code, message string) *AppError {
	return build(http.StatusBadRequest, ErrBadRequest, code, "BAD_REQUEST", message, "")
}

func Conflict(code, message string) *AppError {
	return build(http.StatusConflict, ErrConflict, code, "CONFLICT", message, "")
}

// NewUnprocessable is for well-formed requests the server refuses to act
// on, such as a reused idempotency key with a different body.
func NewUnprocessable(code, message string) *AppError {
	return build(http.StatusUnprocessableEntity, ErrBadRequest, code, "UNPROCESSABLE", message, "")
}

// PaymentRequired reports that the caller's plan does not cover the request.
func PaymentRequired(code, message string) *AppError {
	return build(http.StatusPaymentRequired, ErrForbidden, code, "PAYMENT_REQUIRED", message, "")
}

func RateLimited(message string) *AppError {
	return build(http.StatusTooManyRequests, ErrRateLimited, "RATE_LIMITED", "", message, "too many requests")
}

// BadGateway reports an upstream provider failure and keeps the cause
// reachable through errors.Is.
func BadGateway(message string, err error) *AppError {
	e := build(http.StatusBadGateway, ErrBadGateway, "UPSTREAM_ERROR", "", message, "upstream provider failed")
	e.Err = errors.Join(ErrBadGateway, err)
	return e
}

func ServiceUnavailable(message string) *AppError {
	return build(http.StatusServiceUnavailable, ErrServiceUnavail, "SERVICE_UNAVAILABLE", "", message, "service temporarily unavailable")
}

// Internal hides err behind a generic message.
func Internal(err error) *AppError {
	e := build(http.StatusInternalServerError, nil, "INTERNAL_ERROR", "", "internal server error", "")
	e.Err = err
	return e
}

// StatusOf maps err to an HTTP status: an AppError's own status, else the
// first matching category, else 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	for _, cs := range categoryStatus {
		if errors.Is(err, cs.category) {
			return cs.status
		}
	}
	return http.StatusInternalServerError
}
