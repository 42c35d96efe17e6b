package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/capiorg/backend/internal/domain"
)

// UserCache is an injected TTL cache over the user store, keyed by user id.
// It is an optimization over the auth collaborator, not core logic: a miss
// falls through to the loader and refreshes the entry.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
	load   func(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

func NewUserCache(client *redis.Client, ttl time.Duration, load func(ctx context.Context, id uuid.UUID) (*domain.User, error)) *UserCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &UserCache{client: client, ttl: ttl, load: load}
}

func (c *UserCache) key(id uuid.UUID) string { return "user:" + id.String() }

func (c *UserCache) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if c.client != nil {
		b, err := c.client.Get(ctx, c.key(id)).Bytes()
		if err == nil {
			var u domain.User
			if err := json.Unmarshal(b, &u); err == nil {
				return &u, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			// cache unavailable: fall through to the store
		}
	}

	u, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.client != nil {
		if b, err := json.Marshal(u); err == nil {
			_ = c.client.Set(ctx, c.key(id), b, c.ttl).Err()
		}
	}
	return u, nil
}

func (c *UserCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if c.client != nil {
		_ = c.client.Del(ctx, c.key(id)).Err()
	}
}

// CachedAuthenticator resolves the token through the inner authenticator and
// then confirms through the cache that the account still exists and is
// active. Deleted and not-active accounts authenticate as invalid.
type CachedAuthenticator struct {
	inner Authenticator
	cache *UserCache
}

func NewCachedAuthenticator(inner Authenticator, cache *UserCache) *CachedAuthenticator {
	return &CachedAuthenticator{inner: inner, cache: cache}
}

func (a *CachedAuthenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	ident, err := a.inner.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	u, err := a.cache.Get(ctx, ident.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if u.StatusID != domain.UserStatusActive {
		return nil, ErrInvalidToken
	}
	return ident, nil
}
