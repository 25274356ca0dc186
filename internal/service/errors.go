package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials login failed: unknown username or wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrTooManyAttempts login refused until the failure window expires.
	ErrTooManyAttempts = errors.New("too many failed login attempts")
	// ErrImageUpload the attached house image could not be stored.
	ErrImageUpload = errors.New("failed to upload image")
)

// ValidationError request payload is missing or has a malformed field.
// Returned before storage is touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func required(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
