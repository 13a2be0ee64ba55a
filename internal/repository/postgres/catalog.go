package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/barberbook/internal/domain"
)

type CatalogRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *CatalogRepo) With(db DB) *CatalogRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CatalogRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const shopColumns = `id::text, name, address, rating::float8, reviews_count, image, logo,
	status, opening_hours, phone, tags, main_service_price, main_service_name`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShop(row rowScanner, s *domain.Shop) error {
	var status string

	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Address,
		&s.Rating,
		&s.ReviewsCount,
		&s.Image,
		&s.Logo,
		&status,
		&s.OpeningHours,
		&s.Phone,
		&s.Tags,
		&s.MainServicePriceCents,
		&s.MainServiceName,
	); err != nil {
		return err
	}

	s.Status = domain.ShopStatus(status)

	return nil
}

// ListShops returns every shop with its services and barbers.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//
// Returns:
//   - []domain.Shop: shops ordered by creation, possibly empty.
//   - error: any database error.
func (r *CatalogRepo) ListShops(ctx context.Context) ([]domain.Shop, error) {
	const op = "postgres.CatalogRepo.ListShops"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+shopColumns+`
		 FROM shops
		 ORDER BY created_at, name`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.Shop{}
	for rows.Next() {
		var s domain.Shop
		if err := scanShop(rows, &s); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	services, err := r.services(ctx, db, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	barbers, err := r.barbers(ctx, db, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range out {
		out[i].Services = nonNil(services[out[i].ID])
		out[i].Barbers = nonNil(barbers[out[i].ID])
	}

	return out, nil
}

// GetShop retrieves one shop with its services and barbers.
//
// Returns:
//   - error: repository.ErrNotFound if the shop does not exist or id is not a uuid.
func (r *CatalogRepo) GetShop(ctx context.Context, id string) (*domain.Shop, error) {
	const op = "postgres.CatalogRepo.GetShop"

	db := r.handle()

	var s domain.Shop
	err := scanShop(db.QueryRow(ctx,
		`SELECT `+shopColumns+`
		 FROM shops WHERE id = $1::uuid`,
		id,
	), &s)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	services, err := r.services(ctx, db, &id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	barbers, err := r.barbers(ctx, db, &id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.Services = nonNil(services[s.ID])
	s.Barbers = nonNil(barbers[s.ID])

	return &s, nil
}

// services groups services by shop id. A nil shopID loads all shops.
func (r *CatalogRepo) services(ctx context.Context, db DB, shopID *string) (map[string][]domain.Service, error) {
	rows, err := db.Query(ctx,
		`SELECT id::text, shop_id::text, name, price, duration, description, category, discount
		 FROM services
		 WHERE $1::uuid IS NULL OR shop_id = $1::uuid
		 ORDER BY shop_id, position, name`,
		shopID,
	)
	if err != nil {
		return nil, translateDBErr(err)
	}

	defer rows.Close()

	out := make(map[string][]domain.Service)
	for rows.Next() {
		var (
			svc      domain.Service
			shop     string
			category string
		)

		if err := rows.Scan(
			&svc.ID,
			&shop,
			&svc.Name,
			&svc.PriceCents,
			&svc.DurationMin,
			&svc.Description,
			&category,
			&svc.DiscountCents,
		); err != nil {
			return nil, translateDBErr(err)
		}

		svc.Category = domain.Category(category)
		out[shop] = append(out[shop], svc)
	}

	return out, rows.Err()
}

func (r *CatalogRepo) barbers(ctx context.Context, db DB, shopID *string) (map[string][]domain.Barber, error) {
	rows, err := db.Query(ctx,
		`SELECT id::text, shop_id::text, name, avatar
		 FROM barbers
		 WHERE $1::uuid IS NULL OR shop_id = $1::uuid
		 ORDER BY shop_id, position, name`,
		shopID,
	)
	if err != nil {
		return nil, translateDBErr(err)
	}

	defer rows.Close()

	out := make(map[string][]domain.Barber)
	for rows.Next() {
		var (
			b    domain.Barber
			shop string
		)

		if err := rows.Scan(&b.ID, &shop, &b.Name, &b.Avatar); err != nil {
			return nil, translateDBErr(err)
		}

		out[shop] = append(out[shop], b)
	}

	return out, rows.Err()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
