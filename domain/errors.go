package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPermissionDenied marks writes attempted by callers that are neither the
// owner of the object nor an administrator.
var ErrPermissionDenied = errors.New("permission denied")

// ValidationError carries field-keyed messages for a rejected payload.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, field+": "+strings.Join(msgs, "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add appends a message for the given field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// NotFoundError reports a missing resource by name.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// TokenError reports an invalid, expired or blacklisted token with the
// underlying reason surfaced to the client.
type TokenError struct {
	Reason string
}

func (e *TokenError) Error() string {
	return e.Reason
}
