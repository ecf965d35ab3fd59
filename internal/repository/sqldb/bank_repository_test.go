package sqldb_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/honeynil/bank-ledger/internal/models"
	"github.com/honeynil/bank-ledger/internal/repository/sqldb"
	pkgerrors "github.com/honeynil/bank-ledger/pkg/errors"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestBankRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := sqldb.NewBankRepository(db)
	ctx := context.Background()

	t.Run("NilBank", func(t *testing.T) {
		err := repo.Create(ctx, nil)
		assert.ErrorIs(t, err, pkgerrors.ErrNilBank)
	})

	t.Run("EmptyName", func(t *testing.T) {
		err := repo.Create(ctx, &models.Bank{Name: "  "})
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidBankName)
	})

	t.Run("Success", func(t *testing.T) {
		bank := &models.Bank{Name: "PrivatBank"}
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "Bank" (name) VALUES ($1) RETURNING id`)).
			WithArgs("PrivatBank").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

		err := repo.Create(ctx, bank)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), bank.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyExists", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "Bank"`)).
			WithArgs("PrivatBank").
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, &models.Bank{Name: "PrivatBank"})
		assert.ErrorIs(t, err, pkgerrors.ErrBankAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "Bank"`)).
			WithArgs("Oschadbank").
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Create(ctx, &models.Bank{Name: "Oschadbank"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create bank")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBankRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := sqldb.NewBankRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name FROM "Bank" WHERE id = $1`)).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Monobank"))

		bank, err := repo.GetByID(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, "Monobank", bank.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name FROM "Bank"`)).
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

		bank, err := repo.GetByID(ctx, 9)
		assert.Nil(t, bank)
		assert.ErrorIs(t, err, pkgerrors.ErrBankNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
