package model

import "time"

// Token is an opaque bearer credential bound to a single user.
// Value is only populated right after issue; stores keep Digest.
type Token struct {
	Value    string    `json:"token"`
	Digest   string    `json:"-"`
	UserID   string    `json:"-"`
	IssuedAt time.Time `json:"-"`
}

// TokenResponse is the body returned by a successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

// AuthContext holds the authenticated identity of a request.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	UserID string
}
