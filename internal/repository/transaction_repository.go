package repository

import (
	"context"
	"time"

	"github.com/honeynil/bank-ledger/internal/models"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Transaction, error)
	ListSentByUserSince(ctx context.Context, userID int64, since time.Time) ([]models.Transaction, error)
}
