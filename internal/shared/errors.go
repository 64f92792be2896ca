package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Catalog errors
	ErrInvalidIdentity      = fmt.Errorf("invalid identity")
	ErrMissingRequiredField = fmt.Errorf("missing required field")
	ErrNotFound             = fmt.Errorf("not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// FieldError names the attribute that was missing when a record could not be created.
//
// It unwraps to [ErrMissingRequiredField].
type FieldError struct {
	Kind  string
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s.%s", ErrMissingRequiredField, e.Kind, e.Field)
}

func (e *FieldError) Unwrap() error {
	return ErrMissingRequiredField
}

// MissingField returns a [FieldError] for the given kind and field.
func MissingField(kind, field string) error {
	return &FieldError{Kind: kind, Field: field}
}

// IsSkippable reports whether err only means "nothing to store", such as a blank upstream id.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrInvalidIdentity)
}
