package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/barberbook/internal/domain"
)

type ReviewRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ReviewRepo) With(db DB) *ReviewRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ReviewRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Create inserts the review and fills in its id and creation time.
//
// Returns:
//   - error: repository.ErrNotFound if the shop does not exist.
func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	const op = "postgres.ReviewRepo.Create"

	err := r.handle().QueryRow(ctx,
		`INSERT INTO reviews(shop_id, user_id, rating, comment)
		 VALUES ($1::uuid, $2, $3, $4)
		 RETURNING id, created_at`,
		rv.ShopID, rv.UserID, rv.Rating, rv.Comment,
	).Scan(&rv.ID, &rv.CreatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// ListByShop returns the shop's reviews, newest first.
func (r *ReviewRepo) ListByShop(ctx context.Context, shopID string, limit, offset int) ([]domain.Review, error) {
	const op = "postgres.ReviewRepo.ListByShop"

	rows, err := r.handle().Query(ctx,
		`SELECT id, shop_id::text, user_id, rating, comment, created_at
		 FROM reviews
		 WHERE shop_id = $1::uuid
		 ORDER BY created_at DESC, id
		 LIMIT $2 OFFSET $3`,
		shopID, limit, offset,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.ShopID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// LockShopRating reads the shop's rating summary and holds the shop row
// until the surrounding transaction ends.
//
// Returns:
//   - error: repository.ErrNotFound if the shop does not exist.
func (r *ReviewRepo) LockShopRating(ctx context.Context, shopID string) (float64, string, error) {
	const op = "postgres.ReviewRepo.LockShopRating"

	var (
		rating float64
		count  string
	)

	err := r.handle().QueryRow(ctx,
		`SELECT rating::float8, reviews_count FROM shops WHERE id = $1::uuid FOR UPDATE`,
		shopID,
	).Scan(&rating, &count)
	if err != nil {
		return 0, "", wrapDBErr(op, err)
	}

	return rating, count, nil
}

func (r *ReviewRepo) SetShopRating(ctx context.Context, shopID string, rating float64, count string) error {
	const op = "postgres.ReviewRepo.SetShopRating"

	if _, err := r.handle().Exec(ctx,
		`UPDATE shops SET rating = $2, reviews_count = $3 WHERE id = $1::uuid`,
		shopID, rating, count,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}
