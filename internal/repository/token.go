package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/penshort/accounts/internal/model"
	"github.com/penshort/accounts/internal/store"
)

// ReplaceToken stores token as the only token of its user and returns the
// digest it replaced. The user row is locked for the duration so concurrent
// issues for one user serialize across processes.
func (r *Repository) ReplaceToken(ctx context.Context, token *model.Token) (string, error) {
	var previous string

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, token.UserID).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return store.ErrUserNotFound
			}
			return fmt.Errorf("failed to lock user: %w", err)
		}

		err = tx.QueryRow(ctx,
			`DELETE FROM auth_tokens WHERE user_id = $1 RETURNING digest`,
			token.UserID,
		).Scan(&previous)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to delete previous token: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO auth_tokens (user_id, digest, created_at) VALUES ($1, $2, $3)`,
			token.UserID,
			token.Digest,
			token.IssuedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return previous, nil
}

// GetTokenByDigest retrieves a token by its digest.
func (r *Repository) GetTokenByDigest(ctx context.Context, digest string) (*model.Token, error) {
	query := `SELECT user_id, digest, created_at FROM auth_tokens WHERE digest = $1`

	var token model.Token
	err := r.pool.QueryRow(ctx, query, digest).Scan(
		&token.UserID,
		&token.Digest,
		&token.IssuedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return &token, nil
}

// DeleteUserToken removes the user's token and returns its digest.
func (r *Repository) DeleteUserToken(ctx context.Context, userID string) (string, error) {
	var digest string
	err := r.pool.QueryRow(ctx,
		`DELETE FROM auth_tokens WHERE user_id = $1 RETURNING digest`,
		userID,
	).Scan(&digest)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to delete token: %w", err)
	}

	return digest, nil
}
