// Package store defines the persistence contracts for users and tokens.
package store

import (
	"context"
	"errors"

	"github.com/penshort/accounts/internal/model"
)

// Errors returned by every store implementation.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrTokenNotFound  = errors.New("token not found")
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
)

// UserStore holds user records keyed by unique email and unique username.
// All methods should be safe for concurrent use.
type UserStore interface {
	// CreateUser inserts a user. Uniqueness of email and username is checked
	// atomically with the insert and reported as ErrEmailExists/ErrUsernameExists.
	CreateUser(ctx context.Context, user *model.User) error

	// GetUserByID returns ErrUserNotFound when no record exists.
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// GetUserByEmail looks up by the stored (lower-cased) email.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// GetUserByUsername looks up by exact username.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// UpdateUser overwrites the mutable fields of an existing user.
	UpdateUser(ctx context.Context, user *model.User) error
}

// TokenStore holds at most one token per user.
type TokenStore interface {
	// ReplaceToken stores token as the only token of token.UserID and returns
	// the digest of the token it replaced, or "" if there was none.
	ReplaceToken(ctx context.Context, token *model.Token) (string, error)

	// GetTokenByDigest returns ErrTokenNotFound for unknown digests.
	GetTokenByDigest(ctx context.Context, digest string) (*model.Token, error)

	// DeleteUserToken removes the user's token and returns its digest,
	// or "" if the user had none.
	DeleteUserToken(ctx context.Context, userID string) (string, error)
}

// Store is the full persistence surface used by the API server.
type Store interface {
	UserStore
	TokenStore
	Ping(ctx context.Context) error
	Close()
}
