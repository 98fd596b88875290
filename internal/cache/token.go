package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// tokenKeyPrefix marks token digest -> user id entries.
// Entries expire after Options.TokenTTL unless reissued or revoked first.
const tokenKeyPrefix = "token:"

// GetTokenOwner returns the user id cached for a token digest.
// Returns "" on a cache miss.
func (c *Cache) GetTokenOwner(ctx context.Context, digest string) (string, error) {
	userID, err := c.client.Get(ctx, c.key(tokenKeyPrefix, digest)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// SetTokenOwner caches the owner of a freshly issued token.
func (c *Cache) SetTokenOwner(ctx context.Context, digest, userID string) error {
	return c.client.Set(ctx, c.key(tokenKeyPrefix, digest), userID, c.tokenTTL).Err()
}

// DeleteToken removes a cached token.
// Used when a token is replaced or revoked.
func (c *Cache) DeleteToken(ctx context.Context, digest string) error {
	return c.client.Del(ctx, c.key(tokenKeyPrefix, digest)).Err()
}
