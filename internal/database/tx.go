package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
func WithTx(ctx context.Context, db *sql.DB, name string, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "operation", name, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("rollback failed", "operation", name, "error", rbErr)
			err = errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		slog.Error("operation failed", "operation", name, "error", err)
		return err
	}

	if err = tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "operation", name, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Debug(name+" executed successfully", "operation", name)
	return nil
}
