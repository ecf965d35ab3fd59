package sqldb

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/honeynil/bank-ledger/internal/database"
	"github.com/honeynil/bank-ledger/internal/models"
	pkgerrors "github.com/honeynil/bank-ledger/pkg/errors"
)

const (
	usersWithDebtsQuery = `
		SELECT DISTINCT u.id, u.name, u.surname
		FROM "User" u
		JOIN "Account" a ON a.user_id = u.id
		WHERE a.amount < 0
		ORDER BY u.id`

	// ties on the total go to the lowest bank id
	richestBankQuery = `
		SELECT b.name
		FROM "Bank" b
		JOIN "Account" a ON a.bank_id = b.id
		GROUP BY b.id, b.name
		ORDER BY SUM(a.amount) DESC, b.id ASC
		LIMIT 1`

	oldestClientBankQuery = `
		SELECT b.name
		FROM "Bank" b
		JOIN "Account" a ON a.bank_id = b.id
		JOIN "User" u ON u.id = a.user_id
		WHERE u.birth_day IS NOT NULL AND u.birth_day <> ''
		ORDER BY u.birth_day ASC, b.id ASC
		LIMIT 1`

	topSenderBankQuery = `
		SELECT t.bank_sender_name
		FROM "Transaction" t
		JOIN "Account" a ON a.id = t.account_sender_id
		GROUP BY t.bank_sender_name
		ORDER BY COUNT(DISTINCT a.user_id) DESC, t.bank_sender_name ASC
		LIMIT 1`

	deleteIncompleteAccountsQuery = `DELETE FROM "Account" WHERE user_id IS NULL OR type IS NULL OR bank_id IS NULL OR amount IS NULL`
	deleteIncompleteUsersQuery    = `DELETE FROM "User" WHERE name IS NULL OR surname IS NULL OR accounts IS NULL`
)

type AnalyticsRepository struct {
	q database.Querier
}

func NewAnalyticsRepository(q database.Querier) *AnalyticsRepository {
	return &AnalyticsRepository{q: q}
}

func (r *AnalyticsRepository) UsersWithDebts(ctx context.Context) (_ []string, err error) {
	ctx, done := observe(ctx, "UsersWithDebts")
	defer func() { done(err) }()

	rows, err := r.q.QueryContext(ctx, usersWithDebtsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query debtors: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var u models.User
		if err = rows.Scan(&u.ID, &u.Name, &u.Surname); err != nil {
			return nil, fmt.Errorf("failed to scan debtor: %w", err)
		}
		names = append(names, u.FullName())
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query debtors: %w", err)
	}
	return names, nil
}

func (r *AnalyticsRepository) RichestBank(ctx context.Context) (_ string, err error) {
	ctx, done := observe(ctx, "RichestBank")
	defer func() { done(err) }()
	return r.singleName(ctx, "RichestBank", richestBankQuery)
}

func (r *AnalyticsRepository) BankWithOldestClient(ctx context.Context) (_ string, err error) {
	ctx, done := observe(ctx, "BankWithOldestClient")
	defer func() { done(err) }()
	return r.singleName(ctx, "BankWithOldestClient", oldestClientBankQuery)
}

func (r *AnalyticsRepository) BankWithMostUniqueSenders(ctx context.Context) (_ string, err error) {
	ctx, done := observe(ctx, "BankWithMostUniqueSenders")
	defer func() { done(err) }()
	return r.singleName(ctx, "BankWithMostUniqueSenders", topSenderBankQuery)
}

func (r *AnalyticsRepository) singleName(ctx context.Context, method, query string) (string, error) {
	var name string
	err := r.q.QueryRowContext(ctx, query).Scan(&name)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", pkgerrors.ErrNoData
	}
	if err != nil {
		slog.Error("analytics query failed", "method", method, "error", err)
		return "", fmt.Errorf("%s: %w", method, err)
	}
	return name, nil
}

// DeleteIncomplete removes accounts and then users with a missing required field.
func (r *AnalyticsRepository) DeleteIncomplete(ctx context.Context) (_ models.CleanupResult, err error) {
	ctx, done := observe(ctx, "DeleteIncomplete")
	defer func() { done(err) }()

	var result models.CleanupResult
	if result.Accounts, err = r.exec(ctx, deleteIncompleteAccountsQuery); err != nil {
		return models.CleanupResult{}, fmt.Errorf("failed to delete incomplete accounts: %w", err)
	}
	if result.Users, err = r.exec(ctx, deleteIncompleteUsersQuery); err != nil {
		return models.CleanupResult{}, fmt.Errorf("failed to delete incomplete users: %w", err)
	}

	slog.Info("deleted incomplete users and accounts", "accounts", result.Accounts, "users", result.Users)
	return result, nil
}

func (r *AnalyticsRepository) exec(ctx context.Context, query string) (int64, error) {
	res, err := r.q.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
