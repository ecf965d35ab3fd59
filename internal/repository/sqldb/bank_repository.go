package sqldb

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/honeynil/bank-ledger/internal/database"
	"github.com/honeynil/bank-ledger/internal/models"
	pkgerrors "github.com/honeynil/bank-ledger/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

type BankRepository struct {
	q database.Querier
}

func NewBankRepository(q database.Querier) *BankRepository {
	return &BankRepository{q: q}
}

func (r *BankRepository) Create(ctx context.Context, bank *models.Bank) (err error) {
	ctx, done := observe(ctx, "CreateBank")
	defer func() { done(err) }()

	if bank == nil {
		return pkgerrors.ErrNilBank
	}
	if strings.TrimSpace(bank.Name) == "" {
		return pkgerrors.ErrInvalidBankName
	}

	query := `INSERT INTO "Bank" (name) VALUES ($1) RETURNING id`
	err = r.q.QueryRowContext(ctx, query, bank.Name).Scan(&bank.ID)
	if err != nil {
		if isUniqueViolation(err) {
			slog.Warn("bank already exists", "method", "Create", "name", bank.Name)
			return fmt.Errorf("%w: %s", pkgerrors.ErrBankAlreadyExists, bank.Name)
		}
		slog.Error("failed to create bank", "method", "Create", "name", bank.Name, "error", err)
		return fmt.Errorf("failed to create bank: %w", err)
	}

	slog.Info("bank created", "method", "Create", "id", bank.ID, "name", bank.Name)
	return nil
}

func (r *BankRepository) GetByID(ctx context.Context, id int64) (_ *models.Bank, err error) {
	ctx, done := observe(ctx, "GetBankByID", attribute.Int64("bank_id", id))
	defer func() { done(err) }()

	var bank models.Bank
	query := `SELECT id, name FROM "Bank" WHERE id = $1`
	err = r.q.QueryRowContext(ctx, query, id).Scan(&bank.ID, &bank.Name)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrBankNotFound
	}
	if err != nil {
		slog.Error("failed to get bank by id", "method", "GetByID", "bank_id", id, "error", err)
		return nil, fmt.Errorf("failed to get bank by id: %w", err)
	}
	return &bank, nil
}
