package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
)

// RedisStore is the subset of *redis.Client used by the role cache
type RedisStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// UserLookup resolves a user by email
type UserLookup interface {
	GetByEmail(email string) (*models.User, error)
}

// RoleCache serves user roles from Redis, falling back to the users table.
// A nil store disables caching.
type RoleCache struct {
	store  RedisStore
	users  UserLookup
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRoleCache creates a new role cache
func NewRoleCache(store RedisStore, users UserLookup, ttl time.Duration, logger *logrus.Logger) *RoleCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RoleCache{store: store, users: users, ttl: ttl, logger: logger}
}

func roleKey(email string) string {
	return "role:" + email
}

// Role returns the role for email
func (c *RoleCache) Role(ctx context.Context, email string) (string, error) {
	if c.store != nil {
		role, err := c.store.Get(ctx, roleKey(email)).Result()
		switch {
		case err == nil:
			return role, nil
		case !errors.Is(err, redis.Nil):
			c.logger.WithField("email", email).WithError(err).Warn("Role cache read failed")
		}
	}

	user, err := c.users.GetByEmail(email)
	if err != nil {
		return "", fmt.Errorf("failed to load role: %w", err)
	}

	if c.store != nil {
		if err := c.store.Set(ctx, roleKey(email), user.Role, c.ttl).Err(); err != nil {
			c.logger.WithField("email", email).WithError(err).Warn("Role cache write failed")
		}
	}
	return user.Role, nil
}

// Invalidate drops the cached role for email
func (c *RoleCache) Invalidate(ctx context.Context, email string) {
	if c.store == nil {
		return
	}
	if err := c.store.Del(ctx, roleKey(email)).Err(); err != nil {
		c.logger.WithField("email", email).WithError(err).Warn("Role cache invalidation failed")
	}
}
