// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	"github.com/penshort/accounts/internal/auth"
	"github.com/penshort/accounts/internal/metrics"
	"github.com/penshort/accounts/internal/model"
	"github.com/penshort/accounts/internal/store"
)

const (
	minPasswordLength = 5
	maxFieldLength    = 255
)

// Registry creates and updates user records.
type Registry struct {
	users    store.UserStore
	hasher   auth.Hasher
	validate *validator.Validate
	policy   *bluemonday.Policy
	metrics  metrics.Recorder
	now      func() time.Time
}

// NewRegistry creates a new Registry.
func NewRegistry(users store.UserStore, hasher auth.Hasher, recorder metrics.Recorder) *Registry {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Registry{
		users:    users,
		hasher:   hasher,
		validate: validator.New(),
		policy:   bluemonday.StrictPolicy(),
		metrics:  recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateUserInput defines input for registering a user.
type CreateUserInput struct {
	Email       string
	Username    string
	Password    string
	DisplayName *string
}

// UpdateUserInput defines a partial update. Nil fields are left unchanged.
type UpdateUserInput struct {
	Email       *string
	Username    *string
	Password    *string
	DisplayName *string
}

// Create registers a regular user.
func (r *Registry) Create(ctx context.Context, input CreateUserInput) (*model.User, error) {
	return r.create(ctx, input, false)
}

// CreateSuperuser registers a user with staff and superuser flags set.
func (r *Registry) CreateSuperuser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	return r.create(ctx, input, true)
}

func (r *Registry) create(ctx context.Context, input CreateUserInput, privileged bool) (*model.User, error) {
	email := normalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)

	verr := &ValidationError{}
	r.checkEmail(verr, email)
	r.checkUsername(verr, username)
	checkPassword(verr, input.Password)
	name := r.checkDisplayName(verr, input.DisplayName)

	if err := r.checkUnique(ctx, verr, "", email, username); err != nil {
		return nil, err
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	hash, err := r.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := r.now()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		DisplayName:  name,
		IsActive:     true,
		IsStaff:      privileged,
		IsSuperuser:  privileged,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := r.users.CreateUser(ctx, user); err != nil {
		if verr := uniquenessError(err); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.metrics.IncUserCreated()
	return user, nil
}

// Update applies a partial update to the user identified by userID.
func (r *Registry) Update(ctx context.Context, userID string, input UpdateUserInput) (*model.User, error) {
	user, err := r.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	email, username := "", ""
	if input.Email != nil {
		email = normalizeEmail(*input.Email)
		r.checkEmail(verr, email)
	}
	if input.Username != nil {
		username = strings.TrimSpace(*input.Username)
		r.checkUsername(verr, username)
	}
	if input.Password != nil {
		checkPassword(verr, *input.Password)
	}
	var name *string
	if input.DisplayName != nil {
		name = r.checkDisplayName(verr, input.DisplayName)
	}

	if err := r.checkUnique(ctx, verr, user.ID, email, username); err != nil {
		return nil, err
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = email
	}
	if input.Username != nil {
		user.Username = username
	}
	if input.DisplayName != nil {
		user.DisplayName = name
	}
	if input.Password != nil {
		hash, err := r.hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = r.now()

	if err := r.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		if verr := uniquenessError(err); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	r.metrics.IncUserUpdated()
	return user, nil
}

// View returns the public projection of a user.
func (r *Registry) View(ctx context.Context, userID string) (model.UserView, error) {
	user, err := r.lookup(ctx, userID)
	if err != nil {
		return model.UserView{}, err
	}
	return user.View(), nil
}

// Get returns the full user record.
func (r *Registry) Get(ctx context.Context, userID string) (*model.User, error) {
	return r.lookup(ctx, userID)
}

func (r *Registry) lookup(ctx context.Context, userID string) (*model.User, error) {
	user, err := r.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *Registry) checkEmail(verr *ValidationError, email string) {
	switch {
	case email == "":
		verr.add("email", MsgRequired)
	case utf8.RuneCountInString(email) > maxFieldLength:
		verr.add("email", MsgTooLong)
	case r.validate.Var(email, "email") != nil:
		verr.add("email", MsgInvalid)
	}
}

func (r *Registry) checkUsername(verr *ValidationError, username string) {
	switch {
	case username == "":
		verr.add("username", MsgRequired)
	case utf8.RuneCountInString(username) > maxFieldLength:
		verr.add("username", MsgTooLong)
	}
}

func checkPassword(verr *ValidationError, password string) {
	switch n := utf8.RuneCountInString(password); {
	case n == 0:
		verr.add("password", MsgRequired)
	case n < minPasswordLength:
		verr.add("password", MsgTooShort)
	case n > maxFieldLength:
		verr.add("password", MsgTooLong)
	}
}

// hashPassword reports a hasher length limit as a password field error.
func (r *Registry) hashPassword(password string) (string, error) {
	hash, err := r.hasher.Hash(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		verr := &ValidationError{}
		verr.add("password", MsgTooLong)
		return "", verr
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// checkDisplayName strips markup and returns nil for a blank name.
func (r *Registry) checkDisplayName(verr *ValidationError, name *string) *string {
	if name == nil {
		return nil
	}
	clean := strings.TrimSpace(html.UnescapeString(r.policy.Sanitize(*name)))
	if clean == "" {
		return nil
	}
	if utf8.RuneCountInString(clean) > maxFieldLength {
		verr.add("name", MsgTooLong)
		return nil
	}
	return &clean
}

// checkUnique pre-checks uniqueness for fields that passed validation.
// The store remains authoritative; this only gives nicer errors.
func (r *Registry) checkUnique(ctx context.Context, verr *ValidationError, selfID, email, username string) error {
	if email != "" && !verr.has("email") {
		existing, err := r.users.GetUserByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != selfID:
			verr.add("email", MsgAlreadyExists)
		case err != nil && !errors.Is(err, store.ErrUserNotFound):
			return fmt.Errorf("failed to check email: %w", err)
		}
	}
	if username != "" && !verr.has("username") {
		existing, err := r.users.GetUserByUsername(ctx, username)
		switch {
		case err == nil && existing.ID != selfID:
			verr.add("username", MsgAlreadyExists)
		case err != nil && !errors.Is(err, store.ErrUserNotFound):
			return fmt.Errorf("failed to check username: %w", err)
		}
	}
	return nil
}

// uniquenessError maps store conflicts to a field error, or returns nil.
func uniquenessError(err error) *ValidationError {
	switch {
	case errors.Is(err, store.ErrEmailExists):
		return &ValidationError{Fields: []FieldError{{Field: "email", Message: MsgAlreadyExists}}}
	case errors.Is(err, store.ErrUsernameExists):
		return &ValidationError{Fields: []FieldError{{Field: "username", Message: MsgAlreadyExists}}}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
