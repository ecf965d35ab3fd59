package database_test

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/honeynil/bank-ledger/internal/config"
	"github.com/honeynil/bank-ledger/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaStatements(t *testing.T) {
	t.Run("SQLite", func(t *testing.T) {
		stmts := database.SchemaStatements(database.SQLite, database.SchemaOptions{})
		require.Len(t, stmts, 8)
		assert.Equal(t, `DROP TABLE IF EXISTS "Transaction"`, stmts[0])
		assert.Contains(t, stmts[4], "AUTOINCREMENT")
		assert.Contains(t, stmts[6], "amount REAL NOT NULL")
		assert.NotContains(t, stmts[5], "UNIQUE(name, surname)")
	})

	t.Run("PostgresWithUniqueness", func(t *testing.T) {
		stmts := database.SchemaStatements(database.Postgres, database.SchemaOptions{EnforceUserUniqueness: true})
		assert.Contains(t, stmts[4], "SERIAL PRIMARY KEY")
		assert.Contains(t, stmts[5], "UNIQUE(name, surname)")
		assert.Contains(t, stmts[7], "sent_amount NUMERIC NOT NULL")
	})
}

func TestSetup_Mock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	for _, stmt := range database.SchemaStatements(database.Postgres, database.SchemaOptions{}) {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	err = database.Setup(context.Background(), db, database.Postgres, database.SchemaOptions{})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetup_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "bank.db")}
	db, dialect, err := database.Open(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	t.Run("UniquenessOn", func(t *testing.T) {
		require.NoError(t, database.Setup(ctx, db, dialect, database.SchemaOptions{EnforceUserUniqueness: true}))
		_, err := db.ExecContext(ctx, `INSERT INTO "User" (name, surname, accounts) VALUES ('Ann', 'Lee', '')`)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `INSERT INTO "User" (name, surname, accounts) VALUES ('Ann', 'Lee', '')`)
		assert.Error(t, err)
	})

	t.Run("UniquenessOffResetsTables", func(t *testing.T) {
		require.NoError(t, database.Setup(ctx, db, dialect, database.SchemaOptions{}))
		var count int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "User"`).Scan(&count))
		assert.Zero(t, count)
		for i := 0; i < 2; i++ {
			_, err := db.ExecContext(ctx, `INSERT INTO "User" (name, surname, accounts) VALUES ('Ann', 'Lee', '')`)
			require.NoError(t, err)
		}
	})

	t.Run("CheckConstraints", func(t *testing.T) {
		_, err := db.ExecContext(ctx, `INSERT INTO "Account" (user_id, type, account_number, bank_id, currency, amount, status)
			VALUES (1, 'savings', 'ID--abc-123456-xyz', 1, 'USD', 10, 'gold')`)
		assert.Error(t, err)
	})
}

func TestSQLiteDSN(t *testing.T) {
	dsn := database.SQLiteDSN("bank.db", true)
	assert.True(t, strings.HasPrefix(dsn, "file:bank.db?"))
	assert.Contains(t, dsn, "foreign_keys")
	assert.NotContains(t, database.SQLiteDSN("bank.db", false), "foreign_keys")
}

func TestParseDialect(t *testing.T) {
	d, err := database.ParseDialect("postgres")
	assert.NoError(t, err)
	assert.Equal(t, database.Postgres, d)

	_, err = database.ParseDialect("mysql")
	assert.Error(t, err)
}
