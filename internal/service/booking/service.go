package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/barberbook/internal/domain"
	"github.com/kirinyoku/barberbook/internal/redis"
	"github.com/kirinyoku/barberbook/internal/repository"
	postgresrepo "github.com/kirinyoku/barberbook/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/barberbook/internal/repository/redis"
	"github.com/kirinyoku/barberbook/internal/schedule"
	"github.com/kirinyoku/barberbook/internal/uow"
	"github.com/kirinyoku/barberbook/internal/wizard"
)

type Config struct {
	Rules        schedule.Rules
	Location     *time.Location
	Now          func() time.Time
	DefaultLimit int
	MaxLimit     int
}

type Service struct {
	store   *postgresrepo.Store
	cache   *redisrepo.Cache
	pubsub  *redis.BookingsPubSub
	limiter *redisrepo.SlidingWindowLimiter
	uow     *uow.UoW
	logger  *slog.Logger
	cfg     Config
}

func New(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redis.BookingsPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	logger *slog.Logger,
	cfg Config,
) *Service {
	cfg = cfg.withDefaults()

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:   store,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
		uow:     uow.NewUoW(store),
		logger:  logger,
		cfg:     cfg,
	}
}

func (c Config) withDefaults() Config {
	if c.Location == nil {
		c.Location = time.Local
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 20
	}

	if c.MaxLimit <= 0 {
		c.MaxLimit = 100
	}

	return c
}

// Submit records a finished wizard selection for userID. A session books at
// most once: submitting again for a sessionID that already produced a
// booking returns that booking's id without touching the limiter.
//
// Parameters:
//   - ctx: request-scoped context.
//   - userID: subject of the authenticated caller.
//   - sessionID: wizard session the payload comes from, or "" for none.
//   - p: the payload built by the wizard.
//
// Returns:
//   - uuid.UUID: the booking id.
//   - error: booking.RateLimitedError when the user submits too often.
//   - error: booking.ErrSessionBooked if another user booked this session.
//   - error: booking.ErrSlotTaken if the slot filled up in the meantime.
//   - error: booking.ErrShopNotFound, ErrUnknownServices, ErrUnknownBarber,
//     ErrInvalidDate, ErrDateInPast, ErrUnknownTime or ErrInvalidPayment for
//     payloads that do not match the catalog.
func (s *Service) Submit(ctx context.Context, userID, sessionID string, p wizard.Payload) (uuid.UUID, error) {
	const op = "service.booking.Submit"

	if userID == "" {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrMissingUser)
	}

	prev, ok, err := s.bookedBySession(ctx, userID, sessionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	if ok {
		return prev, nil
	}

	if s.limiter != nil {
		d, err := s.limiter.Allow(ctx, userID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%s: %w", op, err)
		}
		if !d.Allowed {
			return uuid.Nil, fmt.Errorf("%s: %w", op, RateLimitedError{RetryAfter: d.RetryAfter})
		}
	}

	var id uuid.UUID

	err = s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		shop, err := s.store.Catalog().With(tx).GetShop(ctx, p.Shop)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrShopNotFound
			}
			return err
		}

		taken, err := s.store.Bookings().With(tx).TakenSlots(ctx, p.Shop, p.Date)
		if err != nil {
			return err
		}

		b, err := prepare(s.cfg, *shop, taken, userID, p)
		if err != nil {
			return err
		}
		b.SessionID = sessionID

		if err := s.store.Bookings().With(tx).Create(ctx, b); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrSlotTaken
			}
			return err
		}

		id = b.ID

		after(func(ctx context.Context) {
			s.afterBooking(ctx, b)
		})

		return nil
	})
	if errors.Is(err, ErrSlotTaken) {
		// A racing retry of the same session may have won the insert.
		if prev, ok, lookupErr := s.bookedBySession(ctx, userID, sessionID); lookupErr == nil && ok {
			return prev, nil
		}
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// bookedBySession reports the booking sessionID already produced, if any.
func (s *Service) bookedBySession(ctx context.Context, userID, sessionID string) (uuid.UUID, bool, error) {
	if sessionID == "" {
		return uuid.Nil, false, nil
	}

	id, owner, err := s.store.Bookings().FindBySession(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}

	id, err = reuse(id, owner, userID)
	if err != nil {
		return uuid.Nil, false, err
	}

	return id, true, nil
}

// reuse hands an existing session booking back to its owner only.
func reuse(id uuid.UUID, owner, userID string) (uuid.UUID, error) {
	if owner != userID {
		return uuid.Nil, ErrSessionBooked
	}
	return id, nil
}

func (s *Service) afterBooking(ctx context.Context, b domain.Booking) {
	if err := s.cache.InvalidateTakenSlots(ctx, b.ShopID, b.Date); err != nil {
		s.logger.Warn("failed to invalidate availability", slog.String("booking_id", b.ID.String()), slog.Any("error", err))
	}

	if err := s.pubsub.PublishBookingCreated(ctx, b.ShopID, b.Date); err != nil {
		s.logger.Warn("failed to publish booking", slog.String("booking_id", b.ID.String()), slog.Any("error", err))
	}
}

// prepare validates p against the shop and the day's bookings and builds
// the row to insert.
func prepare(cfg Config, shop domain.Shop, taken []domain.TakenSlot, userID string, p wizard.Payload) (domain.Booking, error) {
	if !p.PaymentMethod.Valid() {
		return domain.Booking{}, ErrInvalidPayment
	}

	day, err := wizard.ParseDate(p.Date)
	if err != nil {
		return domain.Booking{}, ErrInvalidDate
	}

	if day.String() < wizard.DateOf(cfg.Now().In(cfg.Location)).String() {
		return domain.Booking{}, ErrDateInPast
	}

	if len(p.Services) == 0 {
		return domain.Booking{}, ErrNoServices
	}

	var total int64
	seen := make(map[string]bool, len(p.Services))
	for _, id := range p.Services {
		svc, ok := shop.Service(id)
		if !ok || seen[id] {
			return domain.Booking{}, ErrUnknownServices
		}
		seen[id] = true
		total += svc.PriceCents
	}

	if p.Barber != nil {
		if _, ok := shop.Barber(*p.Barber); !ok {
			return domain.Booking{}, ErrUnknownBarber
		}
	}

	if _, err := cfg.Rules.Check(shop, taken, p.Time, p.Barber); err != nil {
		if errors.Is(err, schedule.ErrUnknownTime) {
			return domain.Booking{}, ErrUnknownTime
		}
		return domain.Booking{}, ErrSlotTaken
	}

	return domain.Booking{
		ID:            uuid.New(),
		UserID:        userID,
		ShopID:        shop.ID,
		BarberID:      p.Barber,
		ServiceIDs:    p.Services,
		Date:          day.String(),
		Time:          p.Time,
		PaymentMethod: p.PaymentMethod,
		Status:        domain.BookingPending,
		TotalCents:    total,
	}, nil
}

// Cancel cancels one of userID's bookings and frees its slot.
//
// Returns:
//   - error: booking.ErrBookingNotFound when the id is unknown, malformed or
//     belongs to someone else.
//   - error: booking.ErrStatusTransition if the booking is already cancelled
//     or completed.
func (s *Service) Cancel(ctx context.Context, userID, id string) (*domain.Booking, error) {
	return s.changeStatus(ctx, "service.booking.Cancel", id, userID, domain.BookingCancelled)
}

// SetStatus moves any booking to status. It is meant for shop staff.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	return s.changeStatus(ctx, "service.booking.SetStatus", id, "", status)
}

// changeStatus locks the booking, checks the move and stores it. An empty
// owner skips the ownership check.
func (s *Service) changeStatus(ctx context.Context, op, id, owner string, to domain.BookingStatus) (*domain.Booking, error) {
	bid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
	}

	if !to.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	var out *domain.Booking

	err = s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		repo := s.store.Bookings().With(tx)

		b, err := repo.Lock(ctx, bid)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if err := checkStatusChange(*b, owner, to); err != nil {
			return err
		}

		if err := repo.UpdateStatus(ctx, bid, to); err != nil {
			return err
		}

		b.Status = to
		out = b

		if to == domain.BookingCancelled {
			cancelled := *b
			after(func(ctx context.Context) {
				s.afterCancel(ctx, cancelled)
			})
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("booking status changed",
		slog.String("booking_id", out.ID.String()),
		slog.String("status", string(to)),
	)

	return out, nil
}

// checkStatusChange hides other users' bookings and refuses moves out of
// final states.
func checkStatusChange(b domain.Booking, owner string, to domain.BookingStatus) error {
	if owner != "" && b.UserID != owner {
		return ErrBookingNotFound
	}

	if !b.Status.CanTransitionTo(to) {
		return ErrStatusTransition
	}

	return nil
}

func (s *Service) afterCancel(ctx context.Context, b domain.Booking) {
	if err := s.cache.InvalidateTakenSlots(ctx, b.ShopID, b.Date); err != nil {
		s.logger.Warn("failed to invalidate availability", slog.String("booking_id", b.ID.String()), slog.Any("error", err))
	}

	if err := s.pubsub.PublishBookingCancelled(ctx, b.ShopID, b.Date); err != nil {
		s.logger.Warn("failed to publish cancellation", slog.String("booking_id", b.ID.String()), slog.Any("error", err))
	}
}

// Get returns one of the user's bookings.
//
// Returns:
//   - error: booking.ErrBookingNotFound when the id is unknown, malformed or
//     belongs to someone else.
func (s *Service) Get(ctx context.Context, userID, id string) (*domain.Booking, error) {
	const op = "service.booking.Get"

	bid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
	}

	b, err := s.store.Bookings().Get(ctx, bid, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// ListForUser pages through the user's bookings, newest first. A zero limit
// selects the default page size.
func (s *Service) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Booking, error) {
	const op = "service.booking.ListForUser"

	limit, offset, err := s.page(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := s.store.Bookings().ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Service) page(limit, offset int) (int, int, error) {
	if limit < 0 || offset < 0 {
		return 0, 0, ErrInvalidPagination
	}

	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}

	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	return limit, offset, nil
}
