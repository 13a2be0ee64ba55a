// Command seed loads the demo barbershops. Shops that already exist by name
// are left alone, so it can run on every deploy.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/kirinyoku/barberbook/internal/config"
	"github.com/kirinyoku/barberbook/internal/postgres"
	"github.com/kirinyoku/barberbook/internal/redis"
	postgresrepo "github.com/kirinyoku/barberbook/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/barberbook/internal/repository/redis"
	"github.com/kirinyoku/barberbook/internal/service/admin"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(context.Background(), logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	pool, err := postgres.New(ctx, postgres.Config{DSN: cfg.Postgres.DSN(), MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	rdb, err := redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	svc := admin.New(postgresrepo.NewStore(pool), redisrepo.New(rdb), logger)

	created, err := svc.Seed(ctx, admin.DemoShops())
	if err != nil {
		return err
	}

	logger.Info("seed finished", "created", created)
	return nil
}
