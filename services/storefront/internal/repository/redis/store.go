package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/peeyushtyagi09/newShopingAI/pkg/errors"
	"github.com/peeyushtyagi09/newShopingAI/pkg/database"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/repository"
)

const keyPrefix = "storefront:"

// Backend implements repository.Backend on Redis. Keys have the form
// storefront:<visitor>:<key>.
type Backend struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewBackend creates a Redis-backed store. A zero ttl stores keys without
// expiry.
func NewBackend(client redis.Cmdable, ttl time.Duration) *Backend {
	return &Backend{client: client, ttl: ttl}
}

// Scope returns the namespace of visitorID.
func (b *Backend) Scope(visitorID string) repository.KeyValueStore {
	return &store{backend: b, prefix: keyPrefix + visitorID + ":"}
}

// Ping checks the Redis connection.
func (b *Backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

type store struct {
	backend *Backend
	prefix  string
}

func (s *store) Get(ctx context.Context, key string) (_ string, err error) {
	ctx, end := database.TraceQuery(ctx, "redis", "GetValue", "GET")
	defer func() { end(err) }()

	v, err := s.backend.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.NotFound("storage key", key)
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *store) Set(ctx context.Context, key, value string) (err error) {
	ctx, end := database.TraceQuery(ctx, "redis", "SetValue", "SET")
	defer func() { end(err) }()

	if err = s.backend.client.Set(ctx, s.prefix+key, value, s.backend.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *store) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, "redis", "DeleteValue", "DEL")
	defer func() { end(err) }()

	if err = s.backend.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
