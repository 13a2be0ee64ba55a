package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kirinyoku/barberbook/internal/domain"
	"github.com/kirinyoku/barberbook/internal/repository"
	redisrepo "github.com/kirinyoku/barberbook/internal/repository/redis"
	"github.com/kirinyoku/barberbook/internal/schedule"
	"github.com/kirinyoku/barberbook/internal/wizard"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	shops      []domain.Shop
	taken      map[string][]domain.TakenSlot
	listCalls  int
	takenCalls int
}

func (f *fakeRepo) ListShops(context.Context) ([]domain.Shop, error) {
	f.listCalls++
	return f.shops, nil
}

func (f *fakeRepo) GetShop(_ context.Context, id string) (*domain.Shop, error) {
	for _, s := range f.shops {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRepo) TakenSlots(_ context.Context, shopID, day string) ([]domain.TakenSlot, error) {
	f.takenCalls++
	return f.taken[shopID+"/"+day], nil
}

var viking = domain.Shop{
	ID:       "s1",
	Name:     "Barbearia Viking",
	Status:   domain.ShopOpen,
	Tags:     []string{"Barba"},
	Services: []domain.Service{{ID: "svc1", Name: "Corte", PriceCents: 4500, DurationMin: 45}},
	Barbers:  []domain.Barber{{ID: "b1", Name: "Carlos"}, {ID: "b2", Name: "André"}},
}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &fakeRepo{shops: []domain.Shop{viking}, taken: map[string][]domain.TakenSlot{}}
	svc := newService(repo, redisrepo.New(client), nil, Config{
		Rules: schedule.Rules{
			Times:   []string{"09:00", "09:45", "13:00"},
			Blocked: []string{"13:00"},
		},
	})

	return svc, repo
}

func TestListShopsIsCached(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		shops, err := svc.ListShops(ctx)
		require.NoError(t, err)
		require.Len(t, shops, 1)
		assert.Equal(t, viking, shops[0])
	}
	assert.Equal(t, 1, repo.listCalls)

	svc.InvalidateCatalog(ctx)
	_, err := svc.ListShops(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestGetShopNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetShop(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestSlotsFor(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	day := wizard.Date{Year: 2026, Month: time.October, Day: 16}
	b1 := "b1"
	repo.taken["s1/2026-10-16"] = []domain.TakenSlot{{Time: "09:00", BarberID: &b1}}

	slots, err := svc.SlotsFor(ctx, "s1", day, "b1")
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.False(t, slots[0].Available)
	assert.True(t, slots[1].Available)
	assert.False(t, slots[2].Available)

	slots, err = svc.SlotsFor(ctx, "s1", day, "")
	require.NoError(t, err)
	assert.True(t, slots[0].Available)
	assert.Equal(t, "b2", slots[0].Barber.ID)

	_, err = svc.SlotsFor(ctx, "s1", day, "b9")
	assert.ErrorIs(t, err, ErrBarberNotFound)

	_, err = svc.SlotsFor(ctx, "s9", day, "")
	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestInvalidateDayRefreshesAvailability(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	day := wizard.Date{Year: 2026, Month: time.October, Day: 16}

	_, err := svc.Slots(ctx, viking, day, wizard.AnyBarber())
	require.NoError(t, err)
	_, err = svc.Slots(ctx, viking, day, wizard.AnyBarber())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.takenCalls)

	repo.taken["s1/2026-10-16"] = []domain.TakenSlot{{Time: "09:45"}, {Time: "09:45"}}
	svc.InvalidateDay(ctx, "s1", day.String())

	slots, err := svc.Slots(ctx, viking, day, wizard.BarberChoice{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.takenCalls)
	assert.False(t, slots[1].Available)
}

func TestCatalogHidesUnbookableShops(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	repo.shops = append(repo.shops,
		domain.Shop{ID: "empty", Name: "Sem Equipe"},
		domain.Shop{ID: "nobarbers", Name: "Só Serviços", Services: viking.Services},
	)

	shops, err := svc.ListShops(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "s1", shops[0].ID)

	for _, id := range []string{"empty", "nobarbers"} {
		_, err := svc.GetShop(ctx, id)
		assert.ErrorIs(t, err, ErrShopNotFound, id)
	}

	_, err = svc.SlotsFor(ctx, "empty", wizard.Date{Year: 2026, Month: time.October, Day: 16}, "")
	assert.ErrorIs(t, err, ErrShopNotFound)
}
