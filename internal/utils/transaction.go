package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"library-admin/internal/interfaces"
)

// WithTransaction runs fn inside a transaction on a pooled connection. The transaction is committed
// when fn succeeds and rolled back when it fails or panics, so a multi-statement operation is applied
// completely or not at all. The connection returns to the pool when the transaction ends.
func WithTransaction(ctx context.Context, pool interfaces.PgxPoolIface, fn func(tx pgx.Tx) error) (err error) {
	LogMessageWithFields(ctx, "debug", "Beginning transaction...")

	tx, err := pool.Begin(ctx)
	if err != nil {
		LogMessageWithFieldsAndError(ctx, "error", "Error beginning transaction", err)
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollbackTransaction(ctx, tx)
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		rollbackTransaction(ctx, tx)
		return err
	}

	LogMessageWithFields(ctx, "debug", "Committing transaction...")
	if err = tx.Commit(ctx); err != nil {
		LogMessageWithFieldsAndError(ctx, "error", "Error committing transaction", err)
		return fmt.Errorf("commit transaction: %w", err)
	}

	LogMessageWithFields(ctx, "debug", "Transaction committed")
	return nil
}

// rollbackTransaction rolls back tx and logs failures, except if the transaction is already closed.
func rollbackTransaction(ctx context.Context, tx pgx.Tx) {
	LogMessageWithFields(ctx, "debug", "Rolling back transaction...")

	if err := tx.Rollback(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return
		}
		LogMessageWithFieldsAndError(ctx, "error", "Error rolling back transaction", err)
		return
	}

	LogMessageWithFields(ctx, "debug", "Transaction rolled back")
}
