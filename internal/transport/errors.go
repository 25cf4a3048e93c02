package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ironsheep/edgefinder/internal/edgefinder"
	"github.com/ironsheep/edgefinder/internal/storage"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeTooLarge   ErrorType = "too_large"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeProcessing ErrorType = "processing"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError is an error with the HTTP status it is reported with.
type AppError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func newError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{Type: t, Message: message, StatusCode: status, Cause: cause}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// classify maps an error from any layer to an AppError. Analysis failures
// mean the frame could not be measured (422); bad settings are the client's
// fault (400); remote fetch problems are upstream failures (502/504).
func classify(message string, err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, storage.ErrTooLarge):
		return newError(ErrorTypeTooLarge, http.StatusRequestEntityTooLarge, message, err)
	case errors.Is(err, context.DeadlineExceeded):
		return newError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, err)
	case errors.Is(err, edgefinder.ErrInvalidConfig):
		return NewValidationError(message, err)
	case errors.Is(err, edgefinder.ErrEmptyRegion),
		errors.Is(err, edgefinder.ErrOutOfBounds),
		errors.Is(err, edgefinder.ErrDegenerateFit):
		return newError(ErrorTypeProcessing, http.StatusUnprocessableEntity, message, err)
	}

	var fetchErr *storage.FetchError
	if errors.As(err, &fetchErr) {
		return newError(ErrorTypeNetwork, http.StatusBadGateway, message, err)
	}
	return newError(ErrorTypeInternal, http.StatusInternalServerError, message, err)
}
