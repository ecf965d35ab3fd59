package database_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/honeynil/bank-ledger/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE x").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := database.WithTx(ctx, db, "Update", func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "UPDATE x")
			return err
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		failure := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := database.WithTx(ctx, db, "Fail", func(tx *sql.Tx) error { return failure })
		assert.ErrorIs(t, err, failure)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollbackError", func(t *testing.T) {
		failure := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(fmt.Errorf("rollback error"))

		err := database.WithTx(ctx, db, "Fail", func(tx *sql.Tx) error { return failure })
		assert.ErrorIs(t, err, failure)
		assert.Contains(t, err.Error(), "rollback failed")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BeginError", func(t *testing.T) {
		mock.ExpectBegin().WillReturnError(fmt.Errorf("no connection"))

		called := false
		err := database.WithTx(ctx, db, "Begin", func(tx *sql.Tx) error {
			called = true
			return nil
		})
		assert.ErrorContains(t, err, "failed to begin transaction")
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CommitError", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(fmt.Errorf("disk full"))

		err := database.WithTx(ctx, db, "Commit", func(tx *sql.Tx) error { return nil })
		assert.ErrorContains(t, err, "failed to commit transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
