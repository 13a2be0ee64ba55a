package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	rediskeys "github.com/kirinyoku/barberbook/internal/redis"
	"github.com/redis/go-redis/v9"
)

// SubmitGuard keeps a single confirmation in flight per session across
// every instance sharing the Redis.
type SubmitGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSubmitGuard returns a guard whose locks expire after ttl even if the
// holder never releases them.
func NewSubmitGuard(rdb *redis.Client, ttl time.Duration) *SubmitGuard {
	return &SubmitGuard{rdb: rdb, ttl: ttl}
}

// Acquire returns false when another confirmation for the session holds the
// lock.
func (g *SubmitGuard) Acquire(ctx context.Context, sessionID string) (bool, error) {
	const op = "redis.SubmitGuard.Acquire"

	ok, err := g.rdb.SetNX(ctx, rediskeys.KeySubmitGuard(sessionID), "LOCK", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

func (g *SubmitGuard) Held(ctx context.Context, sessionID string) (bool, error) {
	const op = "redis.SubmitGuard.Held"

	err := g.rdb.Get(ctx, rediskeys.KeySubmitGuard(sessionID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

func (g *SubmitGuard) Release(ctx context.Context, sessionID string) error {
	const op = "redis.SubmitGuard.Release"

	if err := g.rdb.Del(ctx, rediskeys.KeySubmitGuard(sessionID)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
