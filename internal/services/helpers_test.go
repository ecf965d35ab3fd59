package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/honeynil/bank-ledger/internal/config"
	"github.com/honeynil/bank-ledger/internal/currency"
	"github.com/honeynil/bank-ledger/internal/database"
	"github.com/honeynil/bank-ledger/internal/models"
	"github.com/honeynil/bank-ledger/internal/repository/sqldb"
	"github.com/honeynil/bank-ledger/internal/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRates struct {
	mock.Mock
}

func (m *mockRates) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishTransfer(ctx context.Context, event models.TransferEvent) error {
	return m.Called(ctx, event).Error(0)
}

type fixture struct {
	db        *sql.DB
	store     *sqldb.Store
	rates     *mockRates
	publisher *mockPublisher
	ledger    *LedgerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, dialect, err := database.Open(ctx, config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "bank_system.db"),
		ForeignKeys: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Setup(ctx, db, dialect, database.SchemaOptions{}))

	f := &fixture{
		db:        db,
		store:     sqldb.NewStore(db),
		rates:     &mockRates{},
		publisher: &mockPublisher{},
	}
	f.ledger = NewLedgerService(f.store, currency.NewConverter(f.rates, false), f.publisher)
	return f
}

func (f *fixture) seedBanks(t *testing.T, names ...string) {
	t.Helper()
	inputs := make([]validation.BankInput, 0, len(names))
	for _, name := range names {
		inputs = append(inputs, validation.BankInput{Name: name})
	}
	_, err := f.ledger.AddBanks(context.Background(), inputs...)
	require.NoError(t, err)
}

func (f *fixture) seedUsers(t *testing.T, users ...validation.UserInput) {
	t.Helper()
	_, err := f.ledger.AddUsers(context.Background(), users...)
	require.NoError(t, err)
}

func (f *fixture) seedAccounts(t *testing.T, accounts ...validation.AccountInput) {
	t.Helper()
	_, err := f.ledger.AddAccounts(context.Background(), accounts...)
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, id int64) string {
	t.Helper()
	acc, err := f.ledger.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return acc.Amount.String()
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM "`+table+`"`).Scan(&n))
	return n
}

func account(userID, bankID int64, number, currency, amount string) validation.AccountInput {
	return validation.AccountInput{
		UserID:        userID,
		Type:          "debit",
		AccountNumber: number,
		BankID:        bankID,
		Currency:      currency,
		Amount:        amount,
		Status:        "gold",
	}
}
