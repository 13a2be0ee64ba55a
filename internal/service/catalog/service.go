package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirinyoku/barberbook/internal/domain"
	rediskeys "github.com/kirinyoku/barberbook/internal/redis"
	"github.com/kirinyoku/barberbook/internal/repository"
	postgresrepo "github.com/kirinyoku/barberbook/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/barberbook/internal/repository/redis"
	"github.com/kirinyoku/barberbook/internal/schedule"
	"github.com/kirinyoku/barberbook/internal/wizard"
)

type Config struct {
	CatalogTTL      time.Duration
	AvailabilityTTL time.Duration
	Rules           schedule.Rules
}

// Repository is the read side of the shop catalog.
type Repository interface {
	ListShops(ctx context.Context) ([]domain.Shop, error)
	GetShop(ctx context.Context, id string) (*domain.Shop, error)
	TakenSlots(ctx context.Context, shopID, day string) ([]domain.TakenSlot, error)
}

type storeRepository struct {
	store *postgresrepo.Store
}

func (r storeRepository) ListShops(ctx context.Context) ([]domain.Shop, error) {
	return r.store.Catalog().ListShops(ctx)
}

func (r storeRepository) GetShop(ctx context.Context, id string) (*domain.Shop, error) {
	return r.store.Catalog().GetShop(ctx, id)
}

func (r storeRepository) TakenSlots(ctx context.Context, shopID, day string) ([]domain.TakenSlot, error) {
	return r.store.Bookings().TakenSlots(ctx, shopID, day)
}

type Service struct {
	repo   Repository
	cache  *redisrepo.Cache
	cfg    Config
	logger *slog.Logger
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, logger *slog.Logger, cfg Config) *Service {
	return newService(storeRepository{store: store}, cache, logger, cfg)
}

func newService(repo Repository, cache *redisrepo.Cache, logger *slog.Logger, cfg Config) *Service {
	if cfg.CatalogTTL <= 0 {
		cfg.CatalogTTL = 60 * time.Second
	}

	if cfg.AvailabilityTTL <= 0 {
		cfg.AvailabilityTTL = 15 * time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:   repo,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
}

// ListShops returns the catalog, served from Redis when warm. Shops without
// services or barbers cannot be booked and are left out.
//
// Parameters:
//   - ctx: request-scoped context.
//
// Returns:
//   - []domain.Shop: every bookable shop with nested services and barbers.
//   - error: any repository or cache error.
func (s *Service) ListShops(ctx context.Context) ([]domain.Shop, error) {
	const op = "service.catalog.ListShops"

	shops, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		rediskeys.KeyCatalog(),
		s.cfg.CatalogTTL,
		func(ctx context.Context) ([]domain.Shop, error) {
			all, err := s.repo.ListShops(ctx)
			if err != nil {
				return nil, err
			}

			out := make([]domain.Shop, 0, len(all))
			for _, shop := range all {
				if shop.Bookable() {
					out = append(out, shop)
				}
			}

			return out, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return shops, nil
}

// GetShop retrieves one bookable shop by id.
//
// Returns:
//   - error: catalog.ErrShopNotFound if no such shop exists or it has no
//     services or barbers.
func (s *Service) GetShop(ctx context.Context, id string) (*domain.Shop, error) {
	const op = "service.catalog.GetShop"

	shop, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		rediskeys.KeyShop(id),
		s.cfg.CatalogTTL,
		func(ctx context.Context) (domain.Shop, error) {
			sh, err := s.repo.GetShop(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.Shop{}, ErrShopNotFound
				}

				return domain.Shop{}, err
			}

			if !sh.Bookable() {
				return domain.Shop{}, ErrShopNotFound
			}

			return *sh, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &shop, nil
}

func (s *Service) takenSlots(ctx context.Context, shopID string, day wizard.Date) ([]domain.TakenSlot, error) {
	return redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		rediskeys.KeyTakenSlots(shopID, day.String()),
		s.cfg.AvailabilityTTL,
		func(ctx context.Context) ([]domain.TakenSlot, error) {
			return s.repo.TakenSlots(ctx, shopID, day.String())
		},
	)
}

// Slots builds the slot grid of a shop's day. It satisfies
// wizard.SlotSource; an unset barber choice counts as "any".
func (s *Service) Slots(ctx context.Context, shop domain.Shop, day wizard.Date, barber wizard.BarberChoice) ([]wizard.Slot, error) {
	const op = "service.catalog.Slots"

	taken, err := s.takenSlots(ctx, shop.ID, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.cfg.Rules.Grid(shop, taken, barber.BarberID()), nil
}

// SlotsFor resolves ids before building the grid. An empty barberID means
// any barber.
//
// Returns:
//   - error: catalog.ErrShopNotFound or catalog.ErrBarberNotFound.
func (s *Service) SlotsFor(ctx context.Context, shopID string, day wizard.Date, barberID string) ([]wizard.Slot, error) {
	const op = "service.catalog.SlotsFor"

	shop, err := s.GetShop(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	choice := wizard.AnyBarber()
	if barberID != "" {
		b, ok := shop.Barber(barberID)
		if !ok {
			return nil, fmt.Errorf("%s: %w", op, ErrBarberNotFound)
		}
		choice = wizard.SpecificBarber(b)
	}

	return s.Slots(ctx, *shop, day, choice)
}

// InvalidateDay drops cached availability, typically after a booking
// committed here or on another instance.
func (s *Service) InvalidateDay(ctx context.Context, shopID, day string) {
	if err := s.cache.InvalidateTakenSlots(ctx, shopID, day); err != nil {
		s.logger.Warn("failed to invalidate availability",
			slog.String("shop_id", shopID),
			slog.String("day", day),
			slog.Any("error", err),
		)
	}
}

// InvalidateCatalog drops the cached shop list and the given shops.
func (s *Service) InvalidateCatalog(ctx context.Context, shopIDs ...string) {
	if err := s.cache.InvalidateCatalog(ctx, shopIDs...); err != nil {
		s.logger.Warn("failed to invalidate catalog", slog.Any("error", err))
	}
}
