package repository

import (
	"context"

	"github.com/honeynil/bank-ledger/internal/models"
	"github.com/shopspring/decimal"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	// GetByID returns the account with BankName filled in.
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	// Debit subtracts amount only if the balance covers it, otherwise it
	// returns ErrInsufficientFunds and changes nothing.
	Debit(ctx context.Context, id int64, amount decimal.Decimal) (newBalance decimal.Decimal, err error)
	Credit(ctx context.Context, id int64, amount decimal.Decimal) (newBalance decimal.Decimal, err error)
}
