// Package memory provides an in-memory store implementation for tests and development.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/penshort/accounts/internal/model"
	"github.com/penshort/accounts/internal/store"
)

// Store is an in-memory implementation of store.Store.
// Index maps are only mutated under mu, which makes uniqueness checks atomic
// with inserts and updates.
type Store struct {
	mu sync.RWMutex

	users      map[string]*model.User // by id
	byEmail    map[string]string      // lower-cased email -> id
	byUsername map[string]string      // username -> id

	tokens       map[string]*model.Token // by digest
	tokensByUser map[string]string       // user id -> digest
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		users:        make(map[string]*model.User),
		byEmail:      make(map[string]string),
		byUsername:   make(map[string]string),
		tokens:       make(map[string]*model.Token),
		tokensByUser: make(map[string]string),
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() {}

// CreateUser inserts a user, enforcing email and username uniqueness.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := s.byEmail[email]; ok {
		return store.ErrEmailExists
	}
	if _, ok := s.byUsername[user.Username]; ok {
		return store.ErrUsernameExists
	}

	s.users[user.ID] = user.Clone()
	s.byEmail[email] = user.ID
	s.byUsername[user.Username] = user.ID
	return nil
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user.Clone(), nil
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return s.users[id].Clone(), nil
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return s.users[id].Clone(), nil
}

// UpdateUser replaces a stored user, re-indexing email and username.
func (s *Store) UpdateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}

	oldEmail := strings.ToLower(existing.Email)
	newEmail := strings.ToLower(user.Email)
	if id, ok := s.byEmail[newEmail]; ok && id != user.ID {
		return store.ErrEmailExists
	}
	if id, ok := s.byUsername[user.Username]; ok && id != user.ID {
		return store.ErrUsernameExists
	}

	delete(s.byEmail, oldEmail)
	delete(s.byUsername, existing.Username)
	s.byEmail[newEmail] = user.ID
	s.byUsername[user.Username] = user.ID
	s.users[user.ID] = user.Clone()
	return nil
}

// ReplaceToken stores token as the single token of its user.
func (s *Store) ReplaceToken(ctx context.Context, token *model.Token) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[token.UserID]; !ok {
		return "", store.ErrUserNotFound
	}

	previous := s.tokensByUser[token.UserID]
	if previous != "" {
		delete(s.tokens, previous)
	}

	stored := *token
	stored.Value = ""
	s.tokens[token.Digest] = &stored
	s.tokensByUser[token.UserID] = token.Digest
	return previous, nil
}

// GetTokenByDigest retrieves a token by digest.
func (s *Store) GetTokenByDigest(ctx context.Context, digest string) (*model.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[digest]
	if !ok {
		return nil, store.ErrTokenNotFound
	}
	c := *token
	return &c, nil
}

// DeleteUserToken removes the token owned by userID.
func (s *Store) DeleteUserToken(ctx context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	digest, ok := s.tokensByUser[userID]
	if !ok {
		return "", nil
	}
	delete(s.tokens, digest)
	delete(s.tokensByUser, userID)
	return digest, nil
}

var _ store.Store = (*Store)(nil)
