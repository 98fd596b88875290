package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/penshort/accounts/internal/auth"
	"github.com/penshort/accounts/internal/metrics"
	"github.com/penshort/accounts/internal/model"
	"github.com/penshort/accounts/internal/store"
)

// TokenCache is an optional digest -> owner lookup in front of the token store.
// It is write-through only: entries are written on issue and removed on
// reissue or revoke, never populated from a read.
type TokenCache interface {
	// GetTokenOwner returns "" on a miss.
	GetTokenOwner(ctx context.Context, digest string) (string, error)
	SetTokenOwner(ctx context.Context, digest, userID string) error
	DeleteToken(ctx context.Context, digest string) error
}

// TokenIssuer mints, validates and revokes opaque bearer tokens.
type TokenIssuer struct {
	tokens  store.TokenStore
	users   store.UserStore
	cache   TokenCache
	locks   *keyedMutex
	metrics metrics.Recorder
	now     func() time.Time
}

// NewTokenIssuer creates a new TokenIssuer. cache may be nil.
func NewTokenIssuer(tokens store.TokenStore, users store.UserStore, cache TokenCache, recorder metrics.Recorder) *TokenIssuer {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TokenIssuer{
		tokens:  tokens,
		users:   users,
		cache:   cache,
		locks:   newKeyedMutex(),
		metrics: recorder,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Issue mints a new token for user, invalidating any previous one.
// The returned token carries the plaintext value; it is not stored.
//
// The store commits the replacement before the previous digest is evicted
// from the cache. If eviction fails Issue returns an error, the new token is
// stored but never handed out, and the old token may keep resolving from the
// cache until its entry expires after the configured token TTL.
func (t *TokenIssuer) Issue(ctx context.Context, user *model.User) (*model.Token, error) {
	value, err := auth.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	token := &model.Token{
		Value:    value,
		Digest:   auth.TokenDigest(value),
		UserID:   user.ID,
		IssuedAt: t.now(),
	}

	unlock := t.locks.Lock(user.ID)
	defer unlock()

	previous, err := t.tokens.ReplaceToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	if t.cache != nil {
		if previous != "" {
			// A stale entry would keep the old token alive, so this one must succeed.
			if err := t.cache.DeleteToken(ctx, previous); err != nil {
				return nil, fmt.Errorf("failed to evict previous token: %w", err)
			}
		}
		_ = t.cache.SetTokenOwner(ctx, token.Digest, user.ID)
	}

	t.metrics.IncTokenIssued()
	return token, nil
}

// Validate resolves a token value into its active owner.
func (t *TokenIssuer) Validate(ctx context.Context, value string) (*model.User, error) {
	if value == "" {
		return nil, ErrInvalidCredentials
	}
	digest := auth.TokenDigest(value)

	userID := t.cachedOwner(ctx, digest)
	if userID == "" {
		token, err := t.tokens.GetTokenByDigest(ctx, digest)
		if err != nil {
			if errors.Is(err, store.ErrTokenNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("failed to get token: %w", err)
		}
		userID = token.UserID
	}

	user, err := t.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get token owner: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Revoke deletes the user's token, if any.
func (t *TokenIssuer) Revoke(ctx context.Context, userID string) error {
	unlock := t.locks.Lock(userID)
	defer unlock()

	digest, err := t.tokens.DeleteUserToken(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	if digest == "" {
		return nil
	}
	if t.cache != nil {
		if err := t.cache.DeleteToken(ctx, digest); err != nil {
			return fmt.Errorf("failed to evict revoked token: %w", err)
		}
	}
	t.metrics.IncTokenRevoked()
	return nil
}

// cachedOwner returns "" on a miss or cache error; the store is the fallback.
func (t *TokenIssuer) cachedOwner(ctx context.Context, digest string) string {
	if t.cache == nil {
		return ""
	}
	userID, err := t.cache.GetTokenOwner(ctx, digest)
	if err != nil || userID == "" {
		t.metrics.IncTokenCacheMiss()
		return ""
	}
	t.metrics.IncTokenCacheHit()
	return userID
}
