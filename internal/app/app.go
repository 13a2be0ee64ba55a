package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/barberbook/internal/auth"
	"github.com/kirinyoku/barberbook/internal/config"
	"github.com/kirinyoku/barberbook/internal/gemini"
	"github.com/kirinyoku/barberbook/internal/postgres"
	"github.com/kirinyoku/barberbook/internal/redis"
	postgresrepo "github.com/kirinyoku/barberbook/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/barberbook/internal/repository/redis"
	"github.com/kirinyoku/barberbook/internal/schedule"
	"github.com/kirinyoku/barberbook/internal/service"
	"github.com/kirinyoku/barberbook/internal/service/booking"
	"github.com/kirinyoku/barberbook/internal/service/catalog"
	httpgin "github.com/kirinyoku/barberbook/internal/transport/http/gin"
	"github.com/kirinyoku/barberbook/internal/wizard"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	submitGuardTTL = 30 * time.Second
	// A submission must finish before its guard expires.
	submitTimeout = 20 * time.Second
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	services   *service.Services
	pubsub     *redis.BookingsPubSub
	pool       *pgxpool.Pool
	rdb        *goredis.Client
	gemini     *gemini.Client
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	pgxPool, err := postgres.New(ctx, postgres.Config{DSN: cfg.Postgres.DSN(), MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	if err := postgres.Migrate(ctx, pgxPool); err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to migrate postgres: %w", err)
	}

	rdb, err := redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, pool: pgxPool, rdb: rdb}

	deps := service.Deps{
		Cache:          redisrepo.New(rdb),
		PubSub:         redis.NewBookingsPubSub(rdb),
		Sessions:       redisrepo.NewSessionStore(rdb, cfg.Booking.SessionTTL),
		Guard:          redisrepo.NewSubmitGuard(rdb, submitGuardTTL),
		SubmitLimiter:  redisrepo.NewSlidingWindowLimiter(rdb, "submit", cfg.Limits.Rate, cfg.Limits.Window),
		ConsultLimiter: redisrepo.NewSlidingWindowLimiter(rdb, "consult", cfg.Limits.Rate, cfg.Limits.Window),
	}
	a.pubsub = deps.PubSub

	// Without a key the consultation answers a fixed message.
	if cfg.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize gemini: %w", err)
		}
		a.gemini = client
		deps.Generator = client
	} else {
		logger.Warn("GEMINI_API_KEY is not set, style consultation is disabled")
	}

	rules := schedule.Rules{Times: cfg.Booking.TimeSlots, Blocked: cfg.Booking.BlockedSlots}

	// Initialize services
	a.services = service.NewServices(postgresrepo.NewStore(pgxPool), deps, logger, service.Config{
		Catalog: catalog.Config{
			CatalogTTL:      cfg.Booking.CatalogTTL,
			AvailabilityTTL: cfg.Booking.AvailabilityTTL,
			Rules:           rules,
		},
		Booking: booking.Config{
			Rules:    rules,
			Location: cfg.Booking.Location,
		},
		Wizard:        wizard.Config{Location: cfg.Booking.Location},
		SubmitTimeout: submitTimeout,
	})

	// Initialize Gin router
	verifier := auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.AdminUsers)
	router := httpgin.NewRouter(a.services, verifier, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Bookings made by other instances invalidate our cached availability.
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, ev redis.BookingEvent) {
			a.services.Catalog.InvalidateDay(ctx, ev.ShopID, ev.Day)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("bookings subscriber: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) close() {
	if a.gemini != nil {
		if err := a.gemini.Close(); err != nil {
			a.logger.Warn("failed to close gemini client", slog.Any("error", err))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Warn("failed to close redis", slog.Any("error", err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
