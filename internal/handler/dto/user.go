// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"bytes"
	"encoding/json"
)

// CreateUserRequest represents the request body for registering a user.
type CreateUserRequest struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
}

// LoginRequest represents the request body for obtaining a token.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// UpdateUserRequest represents a partial profile update.
// Only keys present in the body are applied.
type UpdateUserRequest struct {
	Email    Optional `json:"email"`
	Username Optional `json:"username"`
	Name     Optional `json:"name"`
	Password Optional `json:"password"`
}

// Optional records whether a JSON key was present and its string value.
// An explicit null is present with a nil Value.
type Optional struct {
	Set   bool
	Value *string
}

// UnmarshalJSON is only invoked for keys present in the document.
func (o *Optional) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// OrEmpty returns a pointer for a present key, mapping null to "".
// It returns nil when the key was absent.
func (o Optional) OrEmpty() *string {
	if !o.Set {
		return nil
	}
	if o.Value == nil {
		empty := ""
		return &empty
	}
	return o.Value
}

// ErrorResponse is the envelope for every error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes one error.
type ErrorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}
