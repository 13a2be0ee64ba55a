package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	rediskeys "github.com/kirinyoku/barberbook/internal/redis"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
}

func New(client *redis.Client) *Cache {
	return &Cache{rdb: client}
}

func (c *Cache) GetString(ctx context.Context, key string) (string, bool, error) {
	s, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}

	if err != nil {
		return "", false, err
	}

	return s, true, nil
}

func (c *Cache) SetString(ctx context.Context, key, val string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, val, ttl).Err()
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return c.rdb.Del(ctx, keys...).Err()
}

func GetJSON[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var zero T

	s, ok, err := c.GetString(ctx, key)
	if err != nil || !ok {
		return zero, ok, err
	}

	var out T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return zero, false, err
	}

	return out, true, nil
}

func SetJSON(ctx context.Context, c *Cache, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.SetString(ctx, key, string(b), ttl)
}

// GetOrSetJSON serves key from Redis, or runs loader once per key across
// concurrent callers and stores the result for ttl. A failed store does not
// fail the call.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	var zero T

	if v, ok, err := GetJSON[T](ctx, c, key); err != nil || ok {
		return v, err
	}

	vAny, err, _ := c.sf.Do(key, func() (any, error) {
		if v, ok, err := GetJSON[T](ctx, c, key); err != nil || ok {
			return v, err
		}

		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		_ = SetJSON(ctx, c, key, v, ttl)

		return v, nil
	})
	if err != nil {
		return zero, err
	}

	v, ok := vAny.(T)
	if !ok {
		return zero, fmt.Errorf("cache: unexpected type %T for %s", vAny, key)
	}

	return v, nil
}

// InvalidateCatalog drops the shop list and the given shop entries.
func (c *Cache) InvalidateCatalog(ctx context.Context, shopIDs ...string) error {
	keys := []string{rediskeys.KeyCatalog()}
	for _, id := range shopIDs {
		keys = append(keys, rediskeys.KeyShop(id))
	}

	return c.Del(ctx, keys...)
}

func (c *Cache) InvalidateTakenSlots(ctx context.Context, shopID, day string) error {
	return c.Del(ctx, rediskeys.KeyTakenSlots(shopID, day))
}
