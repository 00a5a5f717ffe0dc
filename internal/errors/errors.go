// Package errors provides error handling utilities.
package errors

import (
	"errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeConfigUnavailable indicates the pricing catalog is absent from
	// both cache and durable store
	TypeConfigUnavailable Type = "CONFIG_UNAVAILABLE"

	// TypePricingUnavailable indicates no computable rate exists for an item
	TypePricingUnavailable Type = "PRICING_UNAVAILABLE"

	// TypeLocationUnresolved indicates no branch distance could be resolved
	TypeLocationUnresolved Type = "LOCATION_UNRESOLVED"

	// TypeProvider indicates an upstream geocoding or store failure
	TypeProvider Type = "PROVIDER_ERROR"

	// TypeInput indicates an input validation error
	TypeInput Type = "INPUT_ERROR"

	// TypeInternal indicates an unexpected internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, t Type) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// IsValidation reports whether an error belongs to the validation class,
// as opposed to an unexpected internal failure. Catalog-unavailable and
// unresolved-rate errors are validation-class.
func IsValidation(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Type {
	case TypeConfigUnavailable, TypePricingUnavailable, TypeInput:
		return true
	}
	return false
}

// ConfigUnavailable creates a catalog-unavailable error
func ConfigUnavailable(message string, cause error) *Error {
	return Wrap(TypeConfigUnavailable, message, cause)
}

// PricingUnavailable creates an unresolved-rate error
func PricingUnavailable(itemKind, identifier string) *Error {
	return Newf(TypePricingUnavailable, "no computable rate for %s: %s", itemKind, identifier)
}

// LocationUnresolved creates an unresolved-location error
func LocationUnresolved(location string) *Error {
	return Newf(TypeLocationUnresolved, "no branch resolved for location: %s", location)
}

// Provider creates an upstream provider error
func Provider(message string, cause error) *Error {
	return Wrap(TypeProvider, message, cause)
}

// Input creates an input validation error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
