package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/barberbook/internal/domain"
)

type AdminRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *AdminRepo) With(db DB) *AdminRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *AdminRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *AdminRepo) CreateShop(ctx context.Context, s domain.Shop) (string, error) {
	const op = "postgres.AdminRepo.CreateShop"

	db := r.handle()

	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}

	var id string
	if err := db.QueryRow(ctx,
		`INSERT INTO shops(name, address, rating, reviews_count, image, logo, status,
		                   opening_hours, phone, tags, main_service_price, main_service_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id::text`,
		s.Name, s.Address, s.Rating, s.ReviewsCount, s.Image, s.Logo, string(s.Status),
		s.OpeningHours, s.Phone, tags, s.MainServicePriceCents, s.MainServiceName,
	).Scan(&id); err != nil {
		return "", wrapDBErr(op, err)
	}

	return id, nil
}

func (r *AdminRepo) BatchCreateServices(ctx context.Context, shopID string, services []domain.Service) error {
	const op = "postgres.AdminRepo.BatchCreateServices"

	db := r.handle()

	batch := &pgx.Batch{}
	for i, svc := range services {
		batch.Queue(
			`INSERT INTO services(shop_id, name, price, duration, description, category, discount, position)
			 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8)`,
			shopID, svc.Name, svc.PriceCents, svc.DurationMin, svc.Description,
			string(svc.Category), svc.DiscountCents, i,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *AdminRepo) BatchCreateBarbers(ctx context.Context, shopID string, barbers []domain.Barber) error {
	const op = "postgres.AdminRepo.BatchCreateBarbers"

	db := r.handle()

	batch := &pgx.Batch{}
	for i, b := range barbers {
		batch.Queue(
			`INSERT INTO barbers(shop_id, name, avatar, position)
			 VALUES ($1::uuid, $2, $3, $4)`,
			shopID, b.Name, b.Avatar, i,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// ShopExists looks a shop up by its unique name.
func (r *AdminRepo) ShopExists(ctx context.Context, name string) (bool, error) {
	const op = "postgres.AdminRepo.ShopExists"

	db := r.handle()

	var exists bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shops WHERE name = $1)`,
		name,
	).Scan(&exists); err != nil {
		return false, wrapDBErr(op, err)
	}

	return exists, nil
}
