package currency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/honeynil/bank-ledger/internal/config"
	"github.com/honeynil/bank-ledger/internal/infrastructure/redis"
	pkgerrors "github.com/honeynil/bank-ledger/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	rate  decimal.Decimal
	err   error
	calls int
}

func (s *stubProvider) Rate(context.Context, string, string) (decimal.Decimal, error) {
	s.calls++
	return s.rate, s.err
}

type memoryCache struct {
	values map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return "", redis.ErrKeyNotFound
	}
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.values[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCache) Del(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func (m *memoryCache) Close() error { return nil }

func TestConverter_Convert(t *testing.T) {
	ctx := context.Background()

	t.Run("SameCurrencyIsIdentity", func(t *testing.T) {
		provider := &stubProvider{err: errors.New("must not be called")}
		c := NewConverter(provider, true)
		for _, v := range []string{"0", "0.001", "100", "-5.555", "123456789.987654321"} {
			amount := decimal.RequireFromString(v)
			got, err := c.Convert(ctx, "UAH", "UAH", amount)
			require.NoError(t, err)
			assert.True(t, amount.Equal(got), v)
		}
		assert.Zero(t, provider.calls)
	})

	t.Run("AppliesRateAndRounds", func(t *testing.T) {
		c := NewConverter(&stubProvider{rate: decimal.RequireFromString("0.9137")}, false)
		got, err := c.Convert(ctx, "USD", "EUR", decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.Equal(t, "91.37", got.String())

		got, err = c.Convert(ctx, "USD", "EUR", decimal.RequireFromString("10.01"))
		require.NoError(t, err)
		assert.Equal(t, "9.15", got.StringFixed(2))
	})

	t.Run("FallbackIsOneToOne", func(t *testing.T) {
		c := NewConverter(&stubProvider{err: errors.New("timeout")}, false)
		got, err := c.Convert(ctx, "USD", "EUR", decimal.NewFromInt(42))
		require.NoError(t, err)
		assert.Equal(t, "42", got.String())
	})

	t.Run("StrictFails", func(t *testing.T) {
		c := NewConverter(&stubProvider{err: errors.New("timeout")}, true)
		_, err := c.Convert(ctx, "USD", "EUR", decimal.NewFromInt(42))
		assert.ErrorIs(t, err, pkgerrors.ErrRateUnavailable)
	})
}

func TestFreeCurrencyAPI_Rate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/latest", r.URL.Path)
			assert.Equal(t, "secret", r.URL.Query().Get("apikey"))
			assert.Equal(t, "EUR", r.URL.Query().Get("currencies"))
			assert.Equal(t, "USD", r.URL.Query().Get("base_currency"))
			w.Write([]byte(`{"data":{"EUR":0.92}}`))
		}))
		defer srv.Close()

		p := NewFreeCurrencyAPI(config.CurrencyConfig{BaseURL: srv.URL, APIKey: "secret", Timeout: time.Second})
		rate, err := p.Rate(ctx, "USD", "EUR")
		require.NoError(t, err)
		assert.Equal(t, "0.92", rate.String())
	})

	t.Run("MissingCurrency", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{}}`))
		}))
		defer srv.Close()

		p := NewFreeCurrencyAPI(config.CurrencyConfig{BaseURL: srv.URL})
		_, err := p.Rate(ctx, "USD", "EUR")
		assert.ErrorContains(t, err, "missing from response")
	})

	t.Run("BadStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		p := NewFreeCurrencyAPI(config.CurrencyConfig{BaseURL: srv.URL})
		_, err := p.Rate(ctx, "USD", "EUR")
		assert.ErrorContains(t, err, "status 401")
	})
}

func TestCachedProvider_Rate(t *testing.T) {
	ctx := context.Background()

	t.Run("MissThenHit", func(t *testing.T) {
		next := &stubProvider{rate: decimal.RequireFromString("41.5")}
		cache := newMemoryCache()
		p := NewCachedProvider(next, cache, time.Hour)

		for i := 0; i < 3; i++ {
			rate, err := p.Rate(ctx, "USD", "UAH")
			require.NoError(t, err)
			assert.Equal(t, "41.5", rate.String())
		}
		assert.Equal(t, 1, next.calls)
		assert.Equal(t, "41.5", cache.values["ledger:rate:USD:UAH"])
		assert.Equal(t, time.Hour, cache.ttls["ledger:rate:USD:UAH"])
	})

	t.Run("CacheDownFallsThrough", func(t *testing.T) {
		next := &stubProvider{rate: decimal.NewFromInt(2)}
		cache := newMemoryCache()
		cache.getErr = errors.New("connection refused")
		p := NewCachedProvider(next, cache, time.Minute)

		rate, err := p.Rate(ctx, "EUR", "PLN")
		require.NoError(t, err)
		assert.Equal(t, "2", rate.String())
		assert.Equal(t, 1, next.calls)
	})

	t.Run("ProviderErrorNotCached", func(t *testing.T) {
		next := &stubProvider{err: errors.New("down")}
		cache := newMemoryCache()
		p := NewCachedProvider(next, cache, time.Minute)

		_, err := p.Rate(ctx, "EUR", "PLN")
		assert.Error(t, err)
		assert.Empty(t, cache.values)
	})
}
