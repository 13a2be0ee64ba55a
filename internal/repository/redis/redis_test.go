package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kirinyoku/barberbook/internal/domain"
	"github.com/kirinyoku/barberbook/internal/repository"
	rediskeys "github.com/kirinyoku/barberbook/internal/redis"
	"github.com/kirinyoku/barberbook/internal/wizard"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestGetOrSetJSONLoadsOnce(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := New(client)
	ctx := context.Background()

	var calls atomic.Int32
	loader := func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"viking", "navalha"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := GetOrSetJSON(ctx, cache, "k", time.Minute, loader)
			assert.NoError(t, err)
			assert.Equal(t, []string{"viking", "navalha"}, got)
		}()
	}
	wg.Wait()

	got, err := GetOrSetJSON(ctx, cache, "k", time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, []string{"viking", "navalha"}, got)
	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("k"))
}

func TestGetOrSetJSONDoesNotCacheErrors(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := New(client)

	_, err := GetOrSetJSON(context.Background(), cache, "k", time.Minute, func(context.Context) (int, error) {
		return 0, errors.New("db down")
	})
	require.Error(t, err)
	assert.False(t, mr.Exists("k"))
}

func TestInvalidateCatalog(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := New(client)

	mr.Set(rediskeys.KeyCatalog(), "[]")
	mr.Set(rediskeys.KeyShop("s1"), "{}")
	mr.Set(rediskeys.KeyShop("s2"), "{}")

	require.NoError(t, cache.InvalidateCatalog(context.Background(), "s1"))

	assert.False(t, mr.Exists(rediskeys.KeyCatalog()))
	assert.False(t, mr.Exists(rediskeys.KeyShop("s1")))
	assert.True(t, mr.Exists(rediskeys.KeyShop("s2")))
}

func TestSessionStoreRoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewSessionStore(client, time.Hour)
	ctx := context.Background()

	day := wizard.Date{Year: 2026, Month: time.October, Day: 16}
	st := wizard.State{
		Step:     wizard.StepDateTime,
		Shop:     &domain.Shop{ID: "s1", Name: "Barbearia Viking"},
		Services: []domain.Service{{ID: "svc1", Name: "Corte", PriceCents: 4500, DurationMin: 45}},
		Barber:   wizard.AnyBarber(),
		Date:     &day,
		View:     day.CalendarMonth(),
	}

	require.NoError(t, store.Save(ctx, "abc", st))
	assert.Equal(t, time.Hour, mr.TTL(rediskeys.KeySession("abc")))

	got, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, st, got)

	require.NoError(t, store.Delete(ctx, "abc"))

	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "abc"), repository.ErrNotFound)
}

func TestSessionStoreExpires(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewSessionStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", wizard.State{Step: wizard.StepShops}))
	mr.FastForward(61 * time.Second)

	_, err := store.Load(ctx, "abc")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionStoreUpdateRetriesOnConcurrentWrite(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewSessionStore(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", wizard.State{Step: wizard.StepShops}))

	calls := 0
	got, err := store.Update(ctx, "abc", func(st wizard.State) (wizard.State, error) {
		calls++
		if calls == 1 {
			// Another request lands between our read and our write.
			require.NoError(t, store.Save(ctx, "abc", wizard.State{
				Step: wizard.StepServices,
				Shop: &domain.Shop{ID: "s1"},
			}))
		}
		st.Barber = wizard.AnyBarber()
		return st, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	require.NotNil(t, got.Shop)
	assert.Equal(t, "s1", got.Shop.ID)
	assert.Equal(t, wizard.AnyBarber(), got.Barber)

	stored, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, got, stored)
	assert.Equal(t, time.Hour, mr.TTL(rediskeys.KeySession("abc")))
}

func TestSessionStoreUpdateKeepsStateOnError(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewSessionStore(client, time.Hour)
	ctx := context.Background()

	before := wizard.State{Step: wizard.StepServices, Shop: &domain.Shop{ID: "s1"}}
	require.NoError(t, store.Save(ctx, "abc", before))

	errBoom := errors.New("boom")
	got, err := store.Update(ctx, "abc", func(st wizard.State) (wizard.State, error) {
		st.Step = wizard.StepPayment
		return st, errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, before, got)

	stored, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, before, stored)

	_, err = store.Update(ctx, "missing", func(st wizard.State) (wizard.State, error) { return st, nil })
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionStoreUpdateGivesUp(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewSessionStore(client, time.Hour)
	store.attempts = 3
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", wizard.State{Step: wizard.StepShops}))

	calls := 0
	_, err := store.Update(ctx, "abc", func(st wizard.State) (wizard.State, error) {
		calls++
		require.NoError(t, store.Save(ctx, "abc", wizard.State{Step: wizard.StepShops}))
		return st, nil
	})
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, 3, calls)
}

func TestSubmitGuard(t *testing.T) {
	mr, client := setupTestRedis(t)
	guard := NewSubmitGuard(client, 30*time.Second)
	ctx := context.Background()

	ok, err := guard.Acquire(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.Acquire(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	held, err := guard.Held(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, held)

	require.NoError(t, guard.Release(ctx, "abc"))

	ok, err = guard.Acquire(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(31 * time.Second)
	held, err = guard.Held(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, held)
}

func TestSlidingWindowLimiter(t *testing.T) {
	_, client := setupTestRedis(t)
	limiter := NewSlidingWindowLimiter(client, "submit", 2, time.Minute)
	now := time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, int64(3), d.Count)
	assert.Equal(t, time.Minute, d.RetryAfter)

	d, err = limiter.Allow(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	now = now.Add(61 * time.Second)
	d, err = limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}
