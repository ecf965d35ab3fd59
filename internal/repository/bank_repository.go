package repository

import (
	"context"

	"github.com/honeynil/bank-ledger/internal/models"
)

type BankRepository interface {
	Create(ctx context.Context, bank *models.Bank) error
	GetByID(ctx context.Context, id int64) (*models.Bank, error)
}
