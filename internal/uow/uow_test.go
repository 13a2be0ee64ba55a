package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	postgres "github.com/kirinyoku/barberbook/internal/repository/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRunner struct {
	errs  []error
	calls int
}

func (r *scriptedRunner) RunTx(ctx context.Context, _ *pgx.TxOptions, fn func(ctx context.Context, tx postgres.DB) error) error {
	r.calls++

	if err := fn(ctx, nil); err != nil {
		return err
	}

	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return err
	}

	return nil
}

func TestDoRunsHooksAfterCommit(t *testing.T) {
	runner := &scriptedRunner{}
	u := NewUoW(runner)

	var ran []string
	err := u.Do(context.Background(), func(ctx context.Context, _ postgres.DB, after func(AfterCommit)) error {
		after(func(context.Context) { ran = append(ran, "invalidate") })
		after(func(context.Context) { ran = append(ran, "publish") })
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"invalidate", "publish"}, ran)
}

func TestDoSkipsHooksOnFailure(t *testing.T) {
	u := NewUoW(&scriptedRunner{})
	boom := errors.New("boom")

	ran := false
	err := u.Do(context.Background(), func(ctx context.Context, _ postgres.DB, after func(AfterCommit)) error {
		after(func(context.Context) { ran = true })
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, ran)
}

func TestDoRetriesSerializationFailures(t *testing.T) {
	runner := &scriptedRunner{errs: []error{&pgconn.PgError{Code: "40001"}}}
	u := NewUoW(runner)

	hooks := 0
	err := u.Do(context.Background(), func(ctx context.Context, _ postgres.DB, after func(AfterCommit)) error {
		after(func(context.Context) { hooks++ })
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, runner.calls)
	assert.Equal(t, 1, hooks)
}

func TestDoGivesUpAfterThreeAttempts(t *testing.T) {
	serial := &pgconn.PgError{Code: "40001"}
	runner := &scriptedRunner{errs: []error{serial, serial, serial, serial}}

	err := NewUoW(runner).Do(context.Background(), func(context.Context, postgres.DB, func(AfterCommit)) error {
		return nil
	})

	assert.ErrorIs(t, err, serial)
	assert.Equal(t, 3, runner.calls)
}
