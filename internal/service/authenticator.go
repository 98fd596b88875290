package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/penshort/accounts/internal/auth"
	"github.com/penshort/accounts/internal/metrics"
	"github.com/penshort/accounts/internal/model"
	"github.com/penshort/accounts/internal/store"
)

// LoginKind selects which unique key a login identifier is resolved against.
type LoginKind int

const (
	// ByUsername resolves the login against usernames.
	ByUsername LoginKind = iota
	// ByEmail resolves the login against emails.
	ByEmail
)

func (k LoginKind) String() string {
	if k == ByEmail {
		return "email"
	}
	return "username"
}

// ClassifyLogin decides how a login identifier is resolved.
// Anything containing "@" is an email and is lower-cased; there is no fallback
// to username lookup, so a username containing "@" cannot log in by username.
func ClassifyLogin(login string) (LoginKind, string) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return ByEmail, strings.ToLower(login)
	}
	return ByUsername, login
}

// Authenticator verifies login credentials.
type Authenticator struct {
	users   store.UserStore
	hasher  auth.Hasher
	metrics metrics.Recorder

	// dummyHash is verified against on unknown logins so they cost one hash like known ones.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(users store.UserStore, hasher auth.Hasher, recorder metrics.Recorder) *Authenticator {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Authenticator{users: users, hasher: hasher, metrics: recorder}
}

// Authenticate resolves login and password into an active user.
// Unknown login, inactive user and wrong password all return ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	user, err := a.authenticate(ctx, login, password)
	if err != nil {
		if IsAuthenticationError(err) {
			a.metrics.IncLogin(metrics.LoginFailure)
		}
		return nil, err
	}
	a.metrics.IncLogin(metrics.LoginSuccess)
	return user, nil
}

func (a *Authenticator) authenticate(ctx context.Context, login, password string) (*model.User, error) {
	kind, key := ClassifyLogin(login)
	if key == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		user *model.User
		err  error
	)
	switch kind {
	case ByEmail:
		user, err = a.users.GetUserByEmail(ctx, key)
	default:
		user, err = a.users.GetUserByUsername(ctx, key)
	}
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			a.burnVerify(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user by %s: %w", kind, err)
	}

	ok, err := a.hasher.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (a *Authenticator) burnVerify(password string) {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = a.hasher.Hash("unused-dummy-password")
	})
	if a.dummyHash != "" {
		_, _ = a.hasher.Verify(password, a.dummyHash)
	}
}
