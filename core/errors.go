package core

import (
	"errors"
	"fmt"
	"net/http"
)

// MaxErrorMessageLength caps error text returned to clients
const MaxErrorMessageLength = 500

// ErrorKind classifies an AppError
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindUnauthorized    ErrorKind = "unauthorized"
	KindForbidden       ErrorKind = "forbidden"
	KindNotFound        ErrorKind = "not_found"
	KindFeatureDisabled ErrorKind = "feature_disabled"
	KindNoProvider      ErrorKind = "no_provider"
	KindProvider        ErrorKind = "provider"
	KindInternal        ErrorKind = "internal"
)

// AppError is an error that knows which HTTP status it maps to
type AppError struct {
	Kind     ErrorKind
	Message  string
	Provider string // set for KindProvider
	Err      error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error kind
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindFeatureDisabled, KindNoProvider:
		return http.StatusServiceUnavailable
	case KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewNotFoundError(message string, err error) *AppError {
	return &AppError{Kind: KindNotFound, Message: message, Err: err}
}

// NewFeatureDisabledError reports that a capability is switched off in config
func NewFeatureDisabledError(message string) *AppError {
	return &AppError{Kind: KindFeatureDisabled, Message: message}
}

// NewNoProviderError reports that no upstream provider has credentials configured
func NewNoProviderError(message string) *AppError {
	return &AppError{Kind: KindNoProvider, Message: message}
}

// NewProviderError wraps an upstream AI or threat-intel failure with the provider name
func NewProviderError(provider, message string, err error) *AppError {
	return &AppError{Kind: KindProvider, Provider: provider, Message: message, Err: err}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// StatusCode returns the status carried by err, or 500 when err is not an AppError
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
