package repository

import (
	"context"

	"github.com/honeynil/bank-ledger/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ListIDs(ctx context.Context) ([]int64, error)
}
