package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInvalidCredentials is returned by Login for an unknown e-mail and
	// for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrRecordNotFound is returned when an authenticated identity no longer
	// maps to a user.
	ErrRecordNotFound = errors.New("user not found")

	// ErrInvalidResetCode is returned by ConfirmPasswordReset for every
	// failure a caller could cause: unknown e-mail, wrong code, expired code.
	ErrInvalidResetCode = errors.New("invalid email, password, or verification code")
)

// ValidationError reports malformed input, keyed by field name.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns a ValidationError with a single message.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

// Add records another message for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether no message was recorded.
func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
