package messaging

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	canonicalKeyPrefix  = "msg:canonical:"
	profilePicKeyPrefix = "msg:profile-pic:"
)

// cachedValidator decorates an IdentityValidator with a Redis cache for the
// idempotent lookups. Reachability checks are never cached: a number can gain
// or lose its identity at any time.
type cachedValidator struct {
	inner  IdentityValidator
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedValidator wraps inner with Redis-backed lookup caching. When
// client is nil the inner validator is returned unchanged.
func NewCachedValidator(inner IdentityValidator, client *redis.Client, ttl time.Duration, logger *zap.Logger) IdentityValidator {
	if client == nil {
		return inner
	}
	return &cachedValidator{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (c *cachedValidator) IsValidContact(ctx context.Context, number string) error {
	return c.inner.IsValidContact(ctx, number)
}

func (c *cachedValidator) CanonicalNumber(ctx context.Context, number string) (string, error) {
	return c.lookup(ctx, canonicalKeyPrefix+number, func() (string, error) {
		return c.inner.CanonicalNumber(ctx, number)
	})
}

func (c *cachedValidator) ProfilePicURL(ctx context.Context, number string) (string, error) {
	return c.lookup(ctx, profilePicKeyPrefix+number, func() (string, error) {
		return c.inner.ProfilePicURL(ctx, number)
	})
}

func (c *cachedValidator) lookup(ctx context.Context, key string, resolve func() (string, error)) (string, error) {
	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return cached, nil
	}
	if err != redis.Nil {
		c.logger.Warn("validator cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err := resolve()
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("validator cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}
