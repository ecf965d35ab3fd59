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
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// maxBalanceAttempts bounds the read-compute-write loop of a balance change.
const maxBalanceAttempts = 3

type AccountRepository struct {
	q database.Querier
}

func NewAccountRepository(q database.Querier) *AccountRepository {
	return &AccountRepository{q: q}
}

func (r *AccountRepository) Create(ctx context.Context, acc *models.Account) (err error) {
	ctx, done := observe(ctx, "CreateAccount")
	defer func() { done(err) }()

	if acc == nil {
		return pkgerrors.ErrNilAccount
	}
	if acc.Type != models.TypeCredit && acc.Type != models.TypeDebit {
		return pkgerrors.ErrInvalidAccountType
	}
	switch acc.Status {
	case "", models.StatusGold, models.StatusSilver, models.StatusPlatinum:
	default:
		return pkgerrors.ErrInvalidAccountStatus
	}

	query := `INSERT INTO "Account" (user_id, type, account_number, bank_id, currency, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err = r.q.QueryRowContext(ctx, query,
		acc.UserID,
		string(acc.Type),
		acc.AccountNumber,
		acc.BankID,
		acc.Currency,
		acc.Amount,
		nullString(string(acc.Status)),
	).Scan(&acc.ID)
	if err != nil {
		if isUniqueViolation(err) {
			slog.Warn("account already exists", "method", "Create", "account_number", acc.AccountNumber)
			return fmt.Errorf("%w: %s", pkgerrors.ErrAccountAlreadyExists, acc.AccountNumber)
		}
		slog.Error("failed to create account", "method", "Create", "account_number", acc.AccountNumber, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	slog.Info("account created", "method", "Create", "id", acc.ID, "user_id", acc.UserID, "bank_id", acc.BankID)
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (_ *models.Account, err error) {
	ctx, done := observe(ctx, "GetAccountByID", attribute.Int64("account_id", id))
	defer func() { done(err) }()

	var (
		acc    models.Account
		status sql.NullString
	)
	query := `
		SELECT a.id, a.user_id, a.type, a.account_number, a.bank_id, COALESCE(b.name, ''), a.currency, a.amount, a.status
		FROM "Account" a
		LEFT JOIN "Bank" b ON b.id = a.bank_id
		WHERE a.id = $1`
	err = r.q.QueryRowContext(ctx, query, id).Scan(
		&acc.ID,
		&acc.UserID,
		&acc.Type,
		&acc.AccountNumber,
		&acc.BankID,
		&acc.BankName,
		&acc.Currency,
		&acc.Amount,
		&status,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", pkgerrors.ErrAccountNotFound, id)
	}
	if err != nil {
		slog.Error("failed to get account by id", "method", "GetByID", "account_id", id, "error", err)
		return nil, fmt.Errorf("failed to get account by id: %w", err)
	}
	acc.Status = models.AccountStatus(status.String)
	return &acc, nil
}

func (r *AccountRepository) Debit(ctx context.Context, id int64, amount decimal.Decimal) (newBalance decimal.Decimal, err error) {
	ctx, done := observe(ctx, "DebitAccount", attribute.Int64("account_id", id), attribute.String("amount", amount.String()))
	defer func() { done(err) }()

	newBalance, err = r.adjust(ctx, id, amount.Neg(), true)
	switch {
	case stderrors.Is(err, pkgerrors.ErrInsufficientFunds):
		slog.Warn("debit rejected", "method", "Debit", "account_id", id, "amount", amount)
		return decimal.Zero, fmt.Errorf("%w: account %d cannot cover %s", pkgerrors.ErrInsufficientFunds, id, amount)
	case err != nil:
		slog.Error("failed to debit account", "method", "Debit", "account_id", id, "error", err)
		return decimal.Zero, fmt.Errorf("failed to debit account: %w", err)
	}
	return newBalance, nil
}

func (r *AccountRepository) Credit(ctx context.Context, id int64, amount decimal.Decimal) (newBalance decimal.Decimal, err error) {
	ctx, done := observe(ctx, "CreditAccount", attribute.Int64("account_id", id), attribute.String("amount", amount.String()))
	defer func() { done(err) }()

	newBalance, err = r.adjust(ctx, id, amount, false)
	if err != nil {
		slog.Error("failed to credit account", "method", "Credit", "account_id", id, "error", err)
		return decimal.Zero, fmt.Errorf("failed to credit account: %w", err)
	}
	return newBalance, nil
}

// adjust adds delta to the balance in Go and writes the result only if the
// stored balance is still the one that was read. With requireFunds the
// balance may not go below zero.
func (r *AccountRepository) adjust(ctx context.Context, id int64, delta decimal.Decimal, requireFunds bool) (decimal.Decimal, error) {
	for attempt := 1; attempt <= maxBalanceAttempts; attempt++ {
		var current decimal.Decimal
		err := r.q.QueryRowContext(ctx, `SELECT amount FROM "Account" WHERE id = $1`, id).Scan(&current)
		if stderrors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%w: id %d", pkgerrors.ErrAccountNotFound, id)
		}
		if err != nil {
			return decimal.Zero, err
		}

		next := current.Add(delta)
		if requireFunds && next.IsNegative() {
			return decimal.Zero, pkgerrors.ErrInsufficientFunds
		}

		res, err := r.q.ExecContext(ctx, `UPDATE "Account" SET amount = $1 WHERE id = $2 AND amount = $3`, next, id, current)
		if err != nil {
			return decimal.Zero, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return decimal.Zero, err
		}
		if n == 1 {
			return next, nil
		}
		slog.Warn("balance changed during update, retrying", "account_id", id, "attempt", attempt)
	}
	return decimal.Zero, fmt.Errorf("%w: account %d", pkgerrors.ErrBalanceConflict, id)
}
