package validation

import (
	"errors"
	"strings"
	"time"
)

// ValidationErrorCode represents specific validation error types
type ValidationErrorCode int

const (
	ErrorFieldRequired ValidationErrorCode = iota
	ErrorUnknownField
)

// ErrInvalidContact is matched by every *Error returned from Result.Err.
var ErrInvalidContact = errors.New("invalid contact")

// ValidationError represents a specific validation error
type ValidationError struct {
	Field   string
	Code    ValidationErrorCode
	Message string
}

// ValidationResult represents the result of contact validation
type ValidationResult struct {
	IsValid     bool
	ValidatedAt time.Time
	Errors      []ValidationError
}

// Error is the error form of a failed ValidationResult.
type Error struct {
	Errors []ValidationError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		msgs = append(msgs, ve.Message)
	}
	return "invalid contact: " + strings.Join(msgs, "; ")
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalidContact
}

// Fields maps each failing field to its message.
func (e *Error) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, ve := range e.Errors {
		fields[ve.Field] = ve.Message
	}
	return fields
}

// Err returns nil for a valid result and an *Error otherwise.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &Error{Errors: r.Errors}
}
