package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies application errors so the request boundary can map
// them to HTTP status codes without inspecting message text.
type ErrorKind string

const (
	// KindValidationFailed aggregates every violated field rule in one error.
	KindValidationFailed ErrorKind = "VALIDATION_FAILED"
	// KindMissingFields is the pre-validation gate: required fields absent
	// from the request body, rejected before storage is touched.
	KindMissingFields ErrorKind = "MISSING_FIELDS"
	// KindUnauthenticated covers missing, malformed, or invalid credentials.
	KindUnauthenticated ErrorKind = "UNAUTHENTICATED"
	// KindForbidden covers role and ownership failures.
	KindForbidden ErrorKind = "FORBIDDEN"
	// KindNotFound is returned when a referenced entity does not exist.
	KindNotFound ErrorKind = "NOT_FOUND"
	// KindInvalidOperation covers business-rule rejections such as
	// self-follow or re-removing an already removed entity.
	KindInvalidOperation ErrorKind = "INVALID_OPERATION"
	// KindPartialFailure reports a multi-step operation that durably applied
	// its primary write but failed a secondary effect (e.g. notification).
	KindPartialFailure ErrorKind = "PARTIAL_FAILURE"
	// KindUpstreamFailure covers storage or mail outages.
	KindUpstreamFailure ErrorKind = "UPSTREAM_FAILURE"
)

// AppError is the application error type carried across layers.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status maps the error kind to its HTTP status code.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidationFailed, KindMissingFields, KindInvalidOperation:
		return fiber.StatusBadRequest
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidationFailed, Message: message}
}

func NewMissingFieldsError(message string) *AppError {
	return &AppError{Kind: KindMissingFields, Message: message}
}

func NewUnauthenticatedError(message string) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewInvalidOperationError(message string) *AppError {
	return &AppError{Kind: KindInvalidOperation, Message: message}
}

func NewPartialFailureError(message string, err error) *AppError {
	return &AppError{Kind: KindPartialFailure, Message: message, Err: err}
}

func NewInternalError(err error) *AppError {
	// Raw lower-level error text is surfaced to the caller on purpose; the
	// original system treated it as a debugging convenience.
	return &AppError{Kind: KindUpstreamFailure, Message: err.Error(), Err: err}
}

// AsAppError unwraps err into an *AppError, or wraps it as an internal error.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}
