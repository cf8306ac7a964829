package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const DBTxKey contextKey = "db_tx"

// TxBeginner starts a transaction. *pgxpool.Pool, *pgxpool.Conn and pgx.Tx
// all satisfy it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxFromContext returns the transaction opened by RunInTx, if any.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(DBTxKey).(pgx.Tx)
	return tx
}

// RunInTx runs fn inside a single transaction started on b. Repositories
// called with the context passed to fn join that transaction. Rollback is
// deferred so every exit path, panics included, releases the transaction;
// after a successful Commit it is a no-op. A transaction already present in
// ctx is reused and left for its owner to finish.
func RunInTx(ctx context.Context, b TxBeginner, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(context.WithValue(ctx, DBTxKey, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Transactor runs a unit of work atomically.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type poolTransactor struct {
	pool *pgxpool.Pool
}

// NewTransactor returns a Transactor that prefers the request's borrowed
// connection and falls back to acquiring one from the pool.
func NewTransactor(pool *pgxpool.Pool) Transactor {
	return &poolTransactor{pool: pool}
}

func (t *poolTransactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if c := ConnFromContext(ctx); c != nil {
		return RunInTx(ctx, c, fn)
	}
	if t.pool == nil {
		return errors.New("no database connection in context")
	}
	return RunInTx(ctx, t.pool, fn)
}
