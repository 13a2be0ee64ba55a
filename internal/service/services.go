package service

import (
	"log/slog"
	"time"

	"github.com/kirinyoku/barberbook/internal/redis"
	postgres "github.com/kirinyoku/barberbook/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/barberbook/internal/repository/redis"
	"github.com/kirinyoku/barberbook/internal/service/admin"
	"github.com/kirinyoku/barberbook/internal/service/booking"
	"github.com/kirinyoku/barberbook/internal/service/catalog"
	"github.com/kirinyoku/barberbook/internal/service/consult"
	"github.com/kirinyoku/barberbook/internal/service/review"
	"github.com/kirinyoku/barberbook/internal/service/session"
	"github.com/kirinyoku/barberbook/internal/wizard"
)

type Services struct {
	Catalog *catalog.Service
	Booking *booking.Service
	Session *session.Service
	Admin   *admin.Service
	Consult *consult.Service
	Review  *review.Service
}

type Config struct {
	Catalog catalog.Config
	Booking booking.Config
	Wizard  wizard.Config

	SubmitTimeout time.Duration
}

// Deps carries the Redis backed stores the services share.
type Deps struct {
	Cache          *redisrepo.Cache
	PubSub         *redis.BookingsPubSub
	Sessions       *redisrepo.SessionStore
	Guard          *redisrepo.SubmitGuard
	SubmitLimiter  *redisrepo.SlidingWindowLimiter
	ConsultLimiter *redisrepo.SlidingWindowLimiter
	Generator      consult.Generator
}

func NewServices(store *postgres.Store, deps Deps, logger *slog.Logger, cfg Config) *Services {
	cat := catalog.New(store, deps.Cache, logger, cfg.Catalog)
	book := booking.New(store, deps.Cache, deps.PubSub, deps.SubmitLimiter, logger, cfg.Booking)

	return &Services{
		Catalog: cat,
		Booking: book,
		Session: session.New(session.Deps{
			Machine: wizard.New(cat, cfg.Wizard),
			Slots:   cat,
			Shops:   cat,
			Store:   deps.Sessions,
			Guard:   deps.Guard,
			Booker:  book,
			Logger:  logger,

			SubmitTimeout: cfg.SubmitTimeout,
		}),
		Admin:   admin.New(store, deps.Cache, logger),
		Consult: consult.New(deps.Generator, deps.ConsultLimiter, logger),
		Review:  review.New(store, deps.Cache, logger),
	}
}
