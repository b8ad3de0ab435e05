package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindNotFound       ErrorKind = "not_found"
	KindConflict       ErrorKind = "conflict"
	KindStorage        ErrorKind = "storage"
	KindPartialFailure ErrorKind = "partial_failure"
	KindUnauthorized   ErrorKind = "unauthorized"
)

// AppError is the error type returned by services. Kind decides the HTTP
// status; Retryable is only ever true for storage errors.
type AppError struct {
	Kind      ErrorKind
	Op        string
	Message   string
	Retryable bool
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(op, message string) *AppError {
	return &AppError{Kind: KindValidation, Op: op, Message: message}
}

func NewNotFoundError(op, message string) *AppError {
	return &AppError{Kind: KindNotFound, Op: op, Message: message}
}

func NewConflictError(op, message string) *AppError {
	return &AppError{Kind: KindConflict, Op: op, Message: message}
}

func NewUnauthorizedError(op, message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Op: op, Message: message}
}

func NewStorageError(op string, err error) *AppError {
	return &AppError{Kind: KindStorage, Op: op, Message: "storage unavailable", Retryable: true, Err: err}
}

func NewPartialFailureError(op, message string, err error) *AppError {
	return &AppError{Kind: KindPartialFailure, Op: op, Message: message, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain, or
// KindStorage for anything unclassified.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}

// IsRetryable reports whether err is a transient storage failure.
func IsRetryable(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Retryable
}

func StatusForKind(kind ErrorKind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
