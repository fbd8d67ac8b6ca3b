package domain

import (
	"errors"
	"fmt"
	"time"

	"dealve/pkg/errcodes"
)

// AppError is a typed application error. Status and RetryAfter are only set
// for upstream failures that carry them.
type AppError struct {
	Code       errcodes.ErrorCode
	Message    string
	Status     int
	RetryAfter time.Duration
	cause      error
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// ErrorCode exposes the code to packages that cannot import domain.
func (e *AppError) ErrorCode() errcodes.ErrorCode {
	return e.Code
}

// Retryable reports whether asking again later may succeed.
func (e *AppError) Retryable() bool {
	switch e.Code {
	case errcodes.Unreachable, errcodes.RateLimited:
		return true
	case errcodes.APIError:
		return e.Status >= 500
	default:
		return false
	}
}

func NewError(code errcodes.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func WrapError(err error, code errcodes.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   err,
	}
}

func NewMalformedResponse(err error) *AppError {
	return WrapError(err, errcodes.MalformedResponse, "malformed response")
}

func NewUnreachable(err error) *AppError {
	return WrapError(err, errcodes.Unreachable, "upstream unreachable")
}

func NewRateLimited(retryAfter time.Duration) *AppError {
	return &AppError{
		Code:       errcodes.RateLimited,
		Message:    "rate limited",
		RetryAfter: retryAfter,
	}
}

// NewAPIError reports a request the upstream rejected. message is the
// server-provided reason and may be empty.
func NewAPIError(status int, message string) *AppError {
	if message == "" {
		message = "upstream rejected the request"
	}

	return &AppError{
		Code:    errcodes.APIError,
		Message: message,
		Status:  status,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func GetCode(err error) (errcodes.ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// AsAppError returns err as an *AppError, wrapping unknown errors as
// InternalServerError.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return WrapError(err, errcodes.InternalServerError, "internal error")
}
