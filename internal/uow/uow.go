package uow

import (
	"context"

	"github.com/jackc/pgx/v5"

	postgres "github.com/kirinyoku/barberbook/internal/repository/postgres"
)

// AfterCommit is a function that runs after a successful transaction commit.
type AfterCommit func(ctx context.Context)

// TxRunner is implemented by postgres.Store.
type TxRunner interface {
	RunTx(ctx context.Context, opts *pgx.TxOptions, fn func(ctx context.Context, tx postgres.DB) error) error
}

// UoW represents a unit of work.
type UoW struct {
	runner   TxRunner
	attempts int
}

// NewUoW retries serialization failures up to three attempts in total.
func NewUoW(runner TxRunner) *UoW {
	return &UoW{runner: runner, attempts: 3}
}

// Do runs fn inside a serializable transaction. After a successful commit,
// it executes all after-commit hooks.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx postgres.DB, after func(AfterCommit)) error,
) error {
	return u.DoWithOpts(ctx, nil, fn)
}

// DoWithOpts is Do with explicit transaction options. Hooks registered by a
// failed attempt are discarded.
func (u *UoW) DoWithOpts(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, tx postgres.DB, after func(AfterCommit)) error,
) error {
	var (
		hooks []AfterCommit
		err   error
	)

	for attempt := 0; attempt < u.attempts; attempt++ {
		hooks = hooks[:0]

		err = u.runner.RunTx(ctx, opts, func(ctx context.Context, tx postgres.DB) error {
			return fn(ctx, tx, func(h AfterCommit) {
				hooks = append(hooks, h)
			})
		})
		if err == nil || !postgres.IsRetryable(err) || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
