package domain

import (
	"errors"
	"fmt"
)

// CodeEmailExists is the auth API error code for a duplicate registration.
const CodeEmailExists = "EMAIL_EXISTS"

var (
	ErrRequestInFlight     = errors.New("a request is already in progress")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrSessionNotReady     = errors.New("session is not ready")
	ErrForbidden           = errors.New("access forbidden")
	ErrInvalidMode         = errors.New("invalid driver mode")
	ErrNotInDelivery       = errors.New("driver is not in delivery mode")
	ErrChecklistIncomplete = errors.New("delivery checklist is incomplete")
	ErrChecklistItem       = errors.New("unknown checklist item")
	ErrInvalidTelemetry    = errors.New("invalid telemetry")
)

// ValidationError is raised before any network call when a form field is
// missing or malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AuthError is a rejection from the auth API: bad credentials, an invalid or
// expired code or token, a duplicate email.
type AuthError struct {
	Status  int
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth api: %s (%s)", e.Message, e.Code)
	}
	return "auth api: " + e.Message
}

// NetworkError means the request to the auth API never completed.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("auth api %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsEmailExists reports whether err is the duplicate-registration rejection.
func IsEmailExists(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Code == CodeEmailExists
}
