package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/honeynil/bank-ledger/internal/handler"
	"github.com/honeynil/bank-ledger/internal/infrastructure/auth"
	"github.com/honeynil/bank-ledger/internal/models"
	service "github.com/honeynil/bank-ledger/internal/services"
	"github.com/honeynil/bank-ledger/internal/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type stubLedger struct{ handler.Ledger }

func (stubLedger) AddBanks(_ context.Context, banks ...validation.BankInput) (int, error) {
	return len(banks), nil
}

func (stubLedger) GetAccount(_ context.Context, id int64) (*models.Account, error) {
	return &models.Account{ID: id, Amount: decimal.Zero}, nil
}

func (stubLedger) Transfer(context.Context, service.TransferRequest) (*models.Transaction, error) {
	return &models.Transaction{ID: 1}, nil
}

func newTestRouter(t *testing.T, db Pinger) (http.Handler, string) {
	t.Helper()
	tokens, err := auth.NewTokenManager("secret", nil)
	require.NoError(t, err)
	token, err := tokens.Issue("operator", time.Hour)
	require.NoError(t, err)
	return SetupRouter(handler.NewHandler(stubLedger{}, nil), tokens, db), token
}

func TestRouter_Auth(t *testing.T) {
	r, token := newTestRouter(t, pinger{})

	req := httptest.NewRequest(http.MethodPost, "/banks", strings.NewReader(`[{"name":"Monobank"}]`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/banks", strings.NewReader(`[{"name":"Monobank"}]`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/accounts/7", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Healthz(t *testing.T) {
	r, _ := newTestRouter(t, pinger{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	r, _ = newTestRouter(t, pinger{err: errors.New("closed")})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"fail"`)
}

func TestRouter_Metrics(t *testing.T) {
	r, _ := newTestRouter(t, pinger{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
