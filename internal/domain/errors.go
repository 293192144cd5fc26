package domain

import (
	"errors"
	"strings"
)

var (
	ErrDuplicateEmail      = errors.New("user with this email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoPasswordSet       = errors.New("no password set for this account")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidOTP          = errors.New("invalid otp")
	ErrOTPExpired          = errors.New("otp expired")
	ErrNotificationFailure = errors.New("failed to send notification")
	ErrInvalidToken        = errors.New("invalid token")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrInvalidProfile      = errors.New("invalid federated profile")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed validation, not just the first.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
