package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/honeynil/bank-ledger/internal/models"
	"github.com/honeynil/bank-ledger/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultHistoryDays = 90

type AnalyticsService struct {
	store repository.Store
	now   func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAnalyticsService builds the service. A nil rng is replaced by a
// time-seeded one.
func NewAnalyticsService(store repository.Store, rng *rand.Rand) *AnalyticsService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &AnalyticsService{store: store, rng: rng, now: time.Now}
}

// AssignRandomDiscounts picks up to MaxDiscountedUsers distinct users and
// gives each one of DiscountRates. Nothing is persisted.
func (s *AnalyticsService) AssignRandomDiscounts(ctx context.Context) (map[int64]int, error) {
	var ids []int64
	err := s.run(ctx, "AssignRandomDiscounts", func(ctx context.Context, r repository.Repositories) error {
		var err error
		ids, err = r.Users().ListIDs(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	selected := ids[:min(len(ids), models.MaxDiscountedUsers)]
	discounts := make(map[int64]int, len(selected))
	for _, id := range selected {
		discounts[id] = models.DiscountRates[s.rng.IntN(len(models.DiscountRates))]
	}
	s.mu.Unlock()

	slog.Info("assigned discounts", "discounts", discounts)
	return discounts, nil
}

func (s *AnalyticsService) UsersWithDebts(ctx context.Context) ([]string, error) {
	var names []string
	err := s.run(ctx, "UsersWithDebts", func(ctx context.Context, r repository.Repositories) error {
		var err error
		names, err = r.Analytics().UsersWithDebts(ctx)
		return err
	})
	return names, err
}

func (s *AnalyticsService) RichestBank(ctx context.Context) (string, error) {
	return s.bankName(ctx, "RichestBank", repository.AnalyticsRepository.RichestBank)
}

func (s *AnalyticsService) BankWithOldestClient(ctx context.Context) (string, error) {
	return s.bankName(ctx, "BankWithOldestClient", repository.AnalyticsRepository.BankWithOldestClient)
}

func (s *AnalyticsService) BankWithMostUniqueSenders(ctx context.Context) (string, error) {
	return s.bankName(ctx, "BankWithMostUniqueSenders", repository.AnalyticsRepository.BankWithMostUniqueSenders)
}

func (s *AnalyticsService) DeleteIncomplete(ctx context.Context) (models.CleanupResult, error) {
	var res models.CleanupResult
	err := s.run(ctx, "DeleteIncomplete", func(ctx context.Context, r repository.Repositories) error {
		var err error
		res, err = r.Analytics().DeleteIncomplete(ctx)
		return err
	})
	return res, err
}

// UserTransactions returns transfers sent by userID during the last days
// days, counting the whole first calendar day (UTC). days <= 0 means
// DefaultHistoryDays.
func (s *AnalyticsService) UserTransactions(ctx context.Context, userID int64, days int) ([]models.Transaction, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	y, m, d := s.now().UTC().AddDate(0, 0, -days).Date()
	since := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var txs []models.Transaction
	err := s.run(ctx, "UserTransactions", func(ctx context.Context, r repository.Repositories) error {
		if _, err := r.Users().GetByID(ctx, userID); err != nil {
			return err
		}
		var err error
		txs, err = r.Transactions().ListSentByUserSince(ctx, userID, since)
		return err
	}, attribute.Int64("user_id", userID), attribute.Int("days", days))
	return txs, err
}

func (s *AnalyticsService) bankName(ctx context.Context, name string, query func(repository.AnalyticsRepository, context.Context) (string, error)) (string, error) {
	var bank string
	err := s.run(ctx, name, func(ctx context.Context, r repository.Repositories) error {
		var err error
		bank, err = query(r.Analytics(), ctx)
		return err
	})
	return bank, err
}

func (s *AnalyticsService) run(ctx context.Context, name string, fn func(context.Context, repository.Repositories) error, attrs ...attribute.KeyValue) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
	defer span.End()

	err := s.store.InTx(ctx, name, func(r repository.Repositories) error {
		return fn(ctx, r)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("analytics query failed", "query", name, "error", err)
		return err
	}
	return nil
}
