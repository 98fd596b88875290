package service

import (
	"errors"
	"strings"
)

// Field error messages.
const (
	MsgRequired      = "required"
	MsgAlreadyExists = "already exists"
	MsgInvalid       = "invalid"
	MsgTooLong       = "too long"
	MsgTooShort      = "must be at least 5 characters"
)

// ErrNotFound is returned when the target user does not exist.
var ErrNotFound = errors.New("user not found")

// ErrInvalidCredentials is the single failure returned by Authenticate and Validate.
var ErrInvalidCredentials = &AuthenticationError{Message: "unable to authenticate"}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every field error found in one request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field was rejected with msg.
func (e *ValidationError) Has(field, msg string) bool {
	for _, f := range e.Fields {
		if f.Field == field && f.Message == msg {
			return true
		}
	}
	return false
}

// FieldMap groups messages by field name.
func (e *ValidationError) FieldMap() map[string][]string {
	m := make(map[string][]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Field] = append(m[f.Field], f.Message)
	}
	return m
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// orNil returns nil when no field was rejected.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// AuthenticationError is returned for every credential or token failure.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// IsAuthenticationError reports whether err is an AuthenticationError.
func IsAuthenticationError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}
