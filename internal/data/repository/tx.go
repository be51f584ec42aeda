package repository

import (
	"context"
	"errors"
	"fmt"

	"capsule-hotel/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrOverlap is returned when the storage layer rejects a write because a
// reservation or hold already covers the same room and range.
var ErrOverlap = errors.New("overlapping booking rejected by storage")

// Transactor runs fn as one all-or-nothing unit. Repositories called with
// the ctx handed to fn take part in the same transaction; nested calls
// join the outer one.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

type pgTransactor struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTransactor(db database.PgxIface, log *zap.Logger) Transactor {
	return &pgTransactor{
		db:  db,
		log: log.With(zap.String("repository", "tx")),
	}
}

func (t *pgTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		t.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			t.log.Warn("Rollback failed", zap.Error(rbErr))
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if isOverlapViolation(err) {
			return ErrOverlap
		}
		t.log.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// conn returns the transaction bound to ctx, or the pool.
func conn(ctx context.Context, db database.PgxIface) database.Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}

const overlapConstraint = "reservations_no_overlap"

// isOverlapViolation matches only the reservation exclusion constraint;
// other unique or exclusion failures stay plain errors.
func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23P01" && pgErr.ConstraintName == overlapConstraint
	}
	return false
}

type scanner interface {
	Scan(dest ...any) error
}
