package repository

import (
	"context"

	"github.com/honeynil/bank-ledger/internal/models"
)

// AnalyticsRepository holds the aggregate queries. Single-value lookups
// return ErrNoData when nothing qualifies.
type AnalyticsRepository interface {
	UsersWithDebts(ctx context.Context) ([]string, error)
	RichestBank(ctx context.Context) (string, error)
	BankWithOldestClient(ctx context.Context) (string, error)
	BankWithMostUniqueSenders(ctx context.Context) (string, error)
	DeleteIncomplete(ctx context.Context) (models.CleanupResult, error)
}
