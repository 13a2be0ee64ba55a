package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/barberbook/internal/domain"
	"github.com/kirinyoku/barberbook/internal/repository"
)

type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Create inserts the booking and its service rows. It does not check slot
// availability; callers do that inside the same transaction.
//
// Returns:
//   - error: repository.ErrConflict if the barber already holds that slot or
//     the session already produced a booking.
//   - error: repository.ErrNotFound if the shop, barber or a service is gone.
func (r *BookingRepo) Create(ctx context.Context, b domain.Booking) error {
	const op = "postgres.BookingRepo.Create"

	db := r.handle()

	var sessionID *string
	if b.SessionID != "" {
		sessionID = &b.SessionID
	}

	if _, err := db.Exec(ctx,
		`INSERT INTO bookings(id, user_id, shop_id, barber_id, day, slot, payment_method, status, total, session_id)
		 VALUES ($1, $2, $3::uuid, $4::uuid, $5::date, $6, $7, $8, $9, $10)`,
		b.ID, b.UserID, b.ShopID, b.BarberID, b.Date, b.Time,
		string(b.PaymentMethod), string(b.Status), b.TotalCents, sessionID,
	); err != nil {
		return wrapDBErr(op, err)
	}

	batch := &pgx.Batch{}
	for i, svcID := range b.ServiceIDs {
		batch.Queue(
			`INSERT INTO booking_services(booking_id, service_id, position)
			 VALUES ($1, $2::uuid, $3)`,
			b.ID, svcID, i,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// TakenSlots lists the active bookings of a shop on day (YYYY-MM-DD).
func (r *BookingRepo) TakenSlots(ctx context.Context, shopID, day string) ([]domain.TakenSlot, error) {
	const op = "postgres.BookingRepo.TakenSlots"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT slot, barber_id::text
		 FROM bookings
		 WHERE shop_id = $1::uuid AND day = $2::date AND status <> 'Cancelled'
		 ORDER BY slot`,
		shopID, day,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.TakenSlot{}
	for rows.Next() {
		var ts domain.TakenSlot
		if err := rows.Scan(&ts.Time, &ts.BarberID); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

const bookingSelect = `SELECT b.id, b.user_id, b.shop_id::text, b.barber_id::text,
		to_char(b.day, 'YYYY-MM-DD'), b.slot, b.payment_method, b.status, b.total,
		COALESCE(b.session_id, ''), b.created_at,
		COALESCE(array_agg(bs.service_id::text ORDER BY bs.position)
			FILTER (WHERE bs.service_id IS NOT NULL), '{}')
	 FROM bookings b
	 LEFT JOIN booking_services bs ON bs.booking_id = b.id`

func scanBooking(row rowScanner, b *domain.Booking) error {
	var method, status string

	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.ShopID,
		&b.BarberID,
		&b.Date,
		&b.Time,
		&method,
		&status,
		&b.TotalCents,
		&b.SessionID,
		&b.CreatedAt,
		&b.ServiceIDs,
	); err != nil {
		return err
	}

	b.PaymentMethod = domain.PaymentMethod(method)
	b.Status = domain.BookingStatus(status)

	return nil
}

// Get returns the booking only when it belongs to userID.
func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID, userID string) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.Get"

	db := r.handle()

	var b domain.Booking
	err := scanBooking(db.QueryRow(ctx,
		bookingSelect+`
		 WHERE b.id = $1 AND b.user_id = $2
		 GROUP BY b.id`,
		id, userID,
	), &b)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &b, nil
}

// FindBySession returns the id and owner of the booking a wizard session
// produced.
//
// Returns:
//   - error: repository.ErrNotFound if the session has not booked yet.
func (r *BookingRepo) FindBySession(ctx context.Context, sessionID string) (uuid.UUID, string, error) {
	const op = "postgres.BookingRepo.FindBySession"

	var (
		id     uuid.UUID
		userID string
	)

	err := r.handle().QueryRow(ctx,
		`SELECT id, user_id FROM bookings WHERE session_id = $1`,
		sessionID,
	).Scan(&id, &userID)
	if err != nil {
		return uuid.Nil, "", wrapDBErr(op, err)
	}

	return id, userID, nil
}

// Lock reads the booking and holds its row lock until the surrounding
// transaction ends.
func (r *BookingRepo) Lock(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.Lock"

	var b domain.Booking
	err := scanBooking(r.handle().QueryRow(ctx,
		`SELECT b.id, b.user_id, b.shop_id::text, b.barber_id::text,
			to_char(b.day, 'YYYY-MM-DD'), b.slot, b.payment_method, b.status, b.total,
			COALESCE(b.session_id, ''), b.created_at,
			COALESCE((SELECT array_agg(bs.service_id::text ORDER BY bs.position)
				FROM booking_services bs WHERE bs.booking_id = b.id), '{}')
		 FROM bookings b
		 WHERE b.id = $1
		 FOR UPDATE OF b`,
		id,
	), &b)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &b, nil
}

func (r *BookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error {
	const op = "postgres.BookingRepo.UpdateStatus"

	tag, err := r.handle().Exec(ctx,
		`UPDATE bookings SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListByUser"

	db := r.handle()

	rows, err := db.Query(ctx,
		bookingSelect+`
		 WHERE b.user_id = $1
		 GROUP BY b.id
		 ORDER BY b.created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.Booking{}
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
