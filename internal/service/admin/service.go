package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirinyoku/barberbook/internal/domain"
	"github.com/kirinyoku/barberbook/internal/repository"
	postgresrepo "github.com/kirinyoku/barberbook/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/barberbook/internal/repository/redis"
	"github.com/kirinyoku/barberbook/internal/uow"
)

type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	uow    *uow.UoW
	logger *slog.Logger
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:  store,
		cache:  cache,
		uow:    uow.NewUoW(store),
		logger: logger,
	}
}

// CreateShop stores a shop with its services and barbers in one
// transaction and returns the new shop id.
//
// Parameters:
//   - ctx: request-scoped context.
//   - shop: the shop to create; ids on nested items are ignored.
//
// Returns:
//   - string: the created shop id.
//   - error: admin.ErrInvalidShop if required fields are missing.
//   - error: admin.ErrShopConflict if a shop with the same name exists.
func (s *Service) CreateShop(ctx context.Context, shop domain.Shop) (string, error) {
	const op = "service.admin.CreateShop"

	if err := validate(&shop); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var id string
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		id, err = s.create(ctx, tx, shop)
		if err != nil {
			return err
		}

		after(func(ctx context.Context) {
			if err := s.cache.InvalidateCatalog(ctx); err != nil {
				s.logger.Warn("failed to invalidate catalog", slog.Any("error", err))
			}
		})

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Service) create(ctx context.Context, tx postgresrepo.DB, shop domain.Shop) (string, error) {
	repo := s.store.Admin().With(tx)

	id, err := repo.CreateShop(ctx, shop)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return "", ErrShopConflict
		}
		return "", err
	}

	if err := repo.BatchCreateServices(ctx, id, shop.Services); err != nil {
		return "", err
	}

	if err := repo.BatchCreateBarbers(ctx, id, shop.Barbers); err != nil {
		return "", err
	}

	return id, nil
}

// Seed creates every shop whose name is not taken yet and reports how many
// were created.
func (s *Service) Seed(ctx context.Context, shops []domain.Shop) (int, error) {
	const op = "service.admin.Seed"

	created := 0
	for _, shop := range shops {
		exists, err := s.store.Admin().ShopExists(ctx, shop.Name)
		if err != nil {
			return created, fmt.Errorf("%s: %w", op, err)
		}

		if exists {
			s.logger.Info("shop already seeded", slog.String("name", shop.Name))
			continue
		}

		if _, err := s.CreateShop(ctx, shop); err != nil {
			if errors.Is(err, ErrShopConflict) {
				continue
			}
			return created, fmt.Errorf("%s: %w", op, err)
		}

		s.logger.Info("shop created", slog.String("name", shop.Name))
		created++
	}

	return created, nil
}

// validate trims names and fills defaults in place.
func validate(shop *domain.Shop) error {
	shop.Name = strings.TrimSpace(shop.Name)
	if shop.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidShop)
	}

	if shop.Status == "" {
		shop.Status = domain.ShopOpen
	}

	if !shop.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidShop, shop.Status)
	}

	if shop.Rating < 0 || shop.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 0 and 5", ErrInvalidShop)
	}

	for i, svc := range shop.Services {
		if strings.TrimSpace(svc.Name) == "" {
			return fmt.Errorf("%w: service %d has no name", ErrInvalidShop, i)
		}
		if svc.PriceCents < 0 || svc.DurationMin <= 0 {
			return fmt.Errorf("%w: service %q needs a price and a duration", ErrInvalidShop, svc.Name)
		}
		if !svc.Category.Valid() {
			return fmt.Errorf("%w: service %q has unknown category %q", ErrInvalidShop, svc.Name, svc.Category)
		}
	}

	for i, b := range shop.Barbers {
		if strings.TrimSpace(b.Name) == "" {
			return fmt.Errorf("%w: barber %d has no name", ErrInvalidShop, i)
		}
	}

	return nil
}
