package service

import (
	"context"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/penshort/accounts/internal/auth"
	"github.com/penshort/accounts/internal/metrics"
	"github.com/penshort/accounts/internal/store/memory"
)

// fixture wires the three core components over one in-memory store.
type fixture struct {
	store    *memory.Store
	hasher   auth.Hasher
	metrics  *metrics.InMemoryRecorder
	registry *Registry
	authn    *Authenticator
	tokens   *TokenIssuer
	cache    *mapCache
}

func newFixture(t *testing.T, withCache bool) *fixture {
	t.Helper()
	st := memory.New()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	rec := metrics.NewInMemory()

	f := &fixture{
		store:    st,
		hasher:   hasher,
		metrics:  rec,
		registry: NewRegistry(st, hasher, rec),
		authn:    NewAuthenticator(st, hasher, rec),
	}
	var cache TokenCache
	if withCache {
		f.cache = newMapCache()
		cache = f.cache
	}
	f.tokens = NewTokenIssuer(st, st, cache, rec)
	return f
}

func strPtr(s string) *string { return &s }

// mapCache is a TokenCache backed by a map.
type mapCache struct {
	mu      sync.Mutex
	owners  map[string]string
	failDel bool
}

func newMapCache() *mapCache {
	return &mapCache{owners: make(map[string]string)}
}

func (c *mapCache) GetTokenOwner(ctx context.Context, digest string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owners[digest], nil
}

func (c *mapCache) SetTokenOwner(ctx context.Context, digest, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owners[digest] = userID
	return nil
}

func (c *mapCache) DeleteToken(ctx context.Context, digest string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failDel {
		return errCacheDown
	}
	delete(c.owners, digest)
	return nil
}

func (c *mapCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.owners)
}

type cacheErr string

func (e cacheErr) Error() string { return string(e) }

const errCacheDown = cacheErr("cache down")
