package sqldb

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/honeynil/bank-ledger/internal/database"
	"github.com/honeynil/bank-ledger/internal/models"
	pkgerrors "github.com/honeynil/bank-ledger/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const transactionColumns = `id, bank_sender_name, account_sender_id, bank_receiver_name, account_receiver_id, sent_currency, sent_amount, datetime`

type TransactionRepository struct {
	q database.Querier
}

func NewTransactionRepository(q database.Querier) *TransactionRepository {
	return &TransactionRepository{q: q}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) (_ int64, err error) {
	ctx, done := observe(ctx, "CreateTransaction")
	defer func() { done(err) }()

	if tx == nil {
		err = pkgerrors.ErrNilTransaction
		slog.Error("failed to create transaction", "method", "Create", "error", err)
		return 0, err
	}
	if !tx.SentAmount.IsPositive() {
		err = pkgerrors.ErrInvalidAmount
		slog.Error("amount must be positive", "method", "Create", "amount", tx.SentAmount, "error", err)
		return 0, err
	}

	query := `INSERT INTO "Transaction" (bank_sender_name, account_sender_id, bank_receiver_name, account_receiver_id, sent_currency, sent_amount, datetime)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	var id int64
	err = r.q.QueryRowContext(ctx, query,
		tx.BankSenderName,
		tx.AccountSenderID,
		tx.BankReceiverName,
		tx.AccountReceiverID,
		tx.SentCurrency,
		tx.SentAmount,
		tx.DateTime.UTC().Format(models.DateTimeLayout),
	).Scan(&id)
	if err != nil {
		slog.Error("failed to create transaction", "method", "Create",
			"account_sender_id", tx.AccountSenderID, "account_receiver_id", tx.AccountReceiverID, "error", err)
		return 0, fmt.Errorf("failed to create transaction: %w", err)
	}

	tx.ID = id
	slog.Info("transaction created", "method", "Create", "id", id,
		"account_sender_id", tx.AccountSenderID, "account_receiver_id", tx.AccountReceiverID)
	return id, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (_ *models.Transaction, err error) {
	ctx, done := observe(ctx, "GetTransactionByID", attribute.Int64("transaction_id", id))
	defer func() { done(err) }()

	query := `SELECT ` + transactionColumns + ` FROM "Transaction" WHERE id = $1`
	tx, err := scanTransaction(r.q.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrTransactionNotFound
	}
	if err != nil {
		slog.Error("failed to get transaction by id", "method", "GetByID", "transaction_id", id, "error", err)
		return nil, fmt.Errorf("failed to get transaction by id: %w", err)
	}
	return tx, nil
}

// ListSentByUserSince lists transfers sent from any account of userID at or
// after since, oldest first.
func (r *TransactionRepository) ListSentByUserSince(ctx context.Context, userID int64, since time.Time) (_ []models.Transaction, err error) {
	ctx, done := observe(ctx, "ListUserTransactions", attribute.Int64("user_id", userID))
	defer func() { done(err) }()

	query := `
		SELECT ` + transactionColumns + `
		FROM "Transaction"
		WHERE account_sender_id IN (SELECT id FROM "Account" WHERE user_id = $1)
		AND datetime >= $2
		ORDER BY datetime, id`
	rows, err := r.q.QueryContext(ctx, query, userID, since.UTC().Format(models.DateTimeLayout))
	if err != nil {
		slog.Error("failed to list user transactions", "method", "ListSentByUserSince", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list user transactions: %w", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		tx, scanErr := scanTransaction(rows)
		if scanErr != nil {
			err = scanErr
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, *tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list user transactions: %w", err)
	}
	return txs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		tx       models.Transaction
		datetime sql.NullString
	)
	if err := row.Scan(
		&tx.ID,
		&tx.BankSenderName,
		&tx.AccountSenderID,
		&tx.BankReceiverName,
		&tx.AccountReceiverID,
		&tx.SentCurrency,
		&tx.SentAmount,
		&datetime,
	); err != nil {
		return nil, err
	}
	if datetime.Valid && datetime.String != "" {
		t, err := time.Parse(models.DateTimeLayout, datetime.String)
		if err != nil {
			return nil, fmt.Errorf("bad datetime %q: %w", datetime.String, err)
		}
		tx.DateTime = t
	}
	return &tx, nil
}
