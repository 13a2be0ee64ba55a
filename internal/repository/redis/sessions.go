package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/barberbook/internal/repository"
	rediskeys "github.com/kirinyoku/barberbook/internal/redis"
	"github.com/kirinyoku/barberbook/internal/wizard"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps wizard states as JSON values. Every save refreshes the
// expiry.
type SessionStore struct {
	rdb      *redis.Client
	ttl      time.Duration
	attempts int
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl, attempts: 16}
}

func (s *SessionStore) Save(ctx context.Context, id string, st wizard.State) error {
	const op = "redis.SessionStore.Save"

	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.rdb.Set(ctx, rediskeys.KeySession(id), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Load returns repository.ErrNotFound for unknown or expired sessions.
func (s *SessionStore) Load(ctx context.Context, id string) (wizard.State, error) {
	const op = "redis.SessionStore.Load"

	b, err := s.rdb.Get(ctx, rediskeys.KeySession(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return wizard.State{}, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	if err != nil {
		return wizard.State{}, fmt.Errorf("%s: %w", op, err)
	}

	var st wizard.State
	if err := json.Unmarshal(b, &st); err != nil {
		return wizard.State{}, fmt.Errorf("%s: decode: %w", op, err)
	}

	return st, nil
}

// Update applies fn to the stored state and writes the result only if no
// other writer touched the session in between; otherwise fn runs again on
// the fresh state. When fn fails nothing is written and the state fn saw is
// returned with its error.
//
// Returns:
//   - error: repository.ErrNotFound for unknown or expired sessions.
//   - error: repository.ErrConflict if the session kept changing underneath.
func (s *SessionStore) Update(
	ctx context.Context,
	id string,
	fn func(st wizard.State) (wizard.State, error),
) (wizard.State, error) {
	const op = "redis.SessionStore.Update"

	key := rediskeys.KeySession(id)

	for attempt := 0; attempt < s.attempts; attempt++ {
		var (
			current wizard.State
			next    wizard.State
			fnErr   error
		)

		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			b, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return repository.ErrNotFound
			}
			if err != nil {
				return err
			}

			if err := json.Unmarshal(b, &current); err != nil {
				return fmt.Errorf("decode: %w", err)
			}

			next, fnErr = fn(current)
			if fnErr != nil {
				return nil
			}

			nb, err := json.Marshal(next)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, nb, s.ttl)
				return nil
			})
			return err
		}, key)

		switch {
		case errors.Is(err, redis.TxFailedErr):
			continue
		case err != nil:
			return current, fmt.Errorf("%s: %w", op, err)
		case fnErr != nil:
			return current, fnErr
		}

		return next, nil
	}

	return wizard.State{}, fmt.Errorf("%s: %w", op, repository.ErrConflict)
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	const op = "redis.SessionStore.Delete"

	n, err := s.rdb.Del(ctx, rediskeys.KeySession(id)).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}
