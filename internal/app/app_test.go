package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/honeynil/bank-ledger/internal/config"
	"github.com/honeynil/bank-ledger/internal/database"
	"github.com/honeynil/bank-ledger/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SQLiteWithoutOptionalServices(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "bank.db")},
		Currency: config.CurrencyConfig{BaseURL: "http://127.0.0.1:1"},
	}

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Tokens)
	_, err = a.NewAuditConsumer()
	assert.Error(t, err)

	require.NoError(t, database.Setup(ctx, a.DB, a.Dialect, database.SchemaOptions{}))
	n, err := a.Ledger.AddBanks(ctx, validation.BankInput{Name: "Monobank"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_WithSecret(t *testing.T) {
	cfg := &config.Config{
		Database:  config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "bank.db")},
		JWTSecret: "secret",
	}
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()
	assert.NotNil(t, a.Tokens)
}
