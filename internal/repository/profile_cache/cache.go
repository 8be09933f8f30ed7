package profile_cache

import (
	"context"
	"encoding/json"
	"errors"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"
	"time"

	"github.com/redis/go-redis/v9"
)

// cache профили в Redis с TTL интервала синхронизации
type cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProfileCache(client *redis.Client, ttl time.Duration) repository.ProfileCache {
	return &cache{client: client, ttl: ttl}
}

func key(userID string) string { return "rtn:profile:" + userID }

func (c *cache) Get(ctx context.Context, userID string) (*model.Profile, error) {
	b, err := c.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var p model.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *cache) Set(ctx context.Context, p model.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(p.ID), b, c.ttl).Err()
}

func (c *cache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, key(userID)).Err()
}

// noop используется, когда REDIS_ADDR не задан
type noop struct{}

func NewNoopCache() repository.ProfileCache { return noop{} }

func (noop) Get(context.Context, string) (*model.Profile, error) { return nil, repository.ErrNotFound }

func (noop) Set(context.Context, model.Profile) error { return nil }

func (noop) Invalidate(context.Context, string) error { return nil }
