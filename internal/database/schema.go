package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

type SchemaOptions struct {
	EnforceUserUniqueness bool
}

// Setup drops and recreates the ledger tables, leaving an empty schema.
func Setup(ctx context.Context, db *sql.DB, dialect Dialect, opts SchemaOptions) error {
	err := WithTx(ctx, db, "SetupSchema", func(tx *sql.Tx) error {
		for _, stmt := range SchemaStatements(dialect, opts) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to execute %q: %w", firstLine(stmt), err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("database schema created", "driver", dialect, "user_uniqueness", opts.EnforceUserUniqueness)
	return nil
}

func SchemaStatements(dialect Dialect, opts SchemaOptions) []string {
	userUnique := ""
	if opts.EnforceUserUniqueness {
		userUnique = ",\n\tUNIQUE(name, surname)"
	}

	return []string{
		`DROP TABLE IF EXISTS "Transaction"`,
		`DROP TABLE IF EXISTS "Account"`,
		`DROP TABLE IF EXISTS "User"`,
		`DROP TABLE IF EXISTS "Bank"`,
		fmt.Sprintf(`CREATE TABLE "Bank" (
	%s,
	name TEXT NOT NULL UNIQUE
)`, dialect.idColumn()),
		fmt.Sprintf(`CREATE TABLE "User" (
	%s,
	name TEXT NOT NULL,
	surname TEXT NOT NULL,
	birth_day TEXT,
	accounts TEXT NOT NULL%s
)`, dialect.idColumn(), userUnique),
		fmt.Sprintf(`CREATE TABLE "Account" (
	%s,
	user_id INTEGER NOT NULL REFERENCES "User"(id),
	type TEXT NOT NULL CHECK (type IN ('credit', 'debit')),
	account_number TEXT NOT NULL UNIQUE,
	bank_id INTEGER NOT NULL REFERENCES "Bank"(id),
	currency TEXT NOT NULL,
	amount %s NOT NULL,
	status TEXT CHECK (status IN ('gold', 'silver', 'platinum'))
)`, dialect.idColumn(), dialect.moneyType()),
		fmt.Sprintf(`CREATE TABLE "Transaction" (
	%s,
	bank_sender_name TEXT NOT NULL,
	account_sender_id INTEGER NOT NULL REFERENCES "Account"(id),
	bank_receiver_name TEXT NOT NULL,
	account_receiver_id INTEGER NOT NULL REFERENCES "Account"(id),
	sent_currency TEXT NOT NULL,
	sent_amount %s NOT NULL,
	datetime TEXT
)`, dialect.idColumn(), dialect.moneyType()),
	}
}

func firstLine(stmt string) string {
	for i, r := range stmt {
		if r == '\n' {
			return stmt[:i]
		}
	}
	return stmt
}
