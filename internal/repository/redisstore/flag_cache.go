package redisstore

import (
	"context"
	"errors"
	"time"

	"applybrain-backend/pkg/redis"
)

const flagKeyPrefix = "onboarding:flag:"

// FlagCache caches the per-user onboarding flag read by the route gate.
type FlagCache struct {
	ttl time.Duration
	mem *memoryStore
}

func NewFlagCache(ttl time.Duration) *FlagCache {
	return &FlagCache{ttl: ttl, mem: newMemoryStore()}
}

func (c *FlagCache) Get(ctx context.Context, userID string) (bool, bool, error) {
	var completed bool
	found, err := redis.GetJSON(ctx, flagKeyPrefix+userID, &completed)
	if errors.Is(err, redis.ErrUnavailable) {
		found, err = c.mem.get(flagKeyPrefix+userID, &completed)
	}
	if err != nil {
		return false, false, err
	}
	return completed, found, nil
}

func (c *FlagCache) Set(ctx context.Context, userID string, completed bool) error {
	err := redis.SetJSON(ctx, flagKeyPrefix+userID, completed, c.ttl)
	if errors.Is(err, redis.ErrUnavailable) {
		return c.mem.set(flagKeyPrefix+userID, completed, c.ttl)
	}
	return err
}

func (c *FlagCache) Invalidate(ctx context.Context, userID string) error {
	err := redis.Delete(ctx, flagKeyPrefix+userID)
	if errors.Is(err, redis.ErrUnavailable) {
		c.mem.delete(flagKeyPrefix + userID)
		return nil
	}
	return err
}
