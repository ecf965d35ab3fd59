package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/honeynil/bank-ledger/internal/config"
	"github.com/honeynil/bank-ledger/internal/infrastructure/observability"
	"github.com/shopspring/decimal"
)

// RateProvider returns the multiplicative rate to convert from -> to.
type RateProvider interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// FreeCurrencyAPI queries the freecurrencyapi.com "latest" endpoint.
type FreeCurrencyAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewFreeCurrencyAPI(cfg config.CurrencyConfig) *FreeCurrencyAPI {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &FreeCurrencyAPI{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type latestResponse struct {
	Data map[string]decimal.Decimal `json:"data"`
}

func (p *FreeCurrencyAPI) Rate(ctx context.Context, from, to string) (rate decimal.Decimal, err error) {
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		observability.RateLookups.WithLabelValues("api", status).Inc()
	}()

	q := url.Values{}
	q.Set("apikey", p.apiKey)
	q.Set("currencies", to)
	q.Set("base_currency", from)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/latest?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate request returned status %d", resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode rate response: %w", err)
	}

	rate, ok := body.Data[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("rate %s->%s missing from response", from, to)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("rate %s->%s is not positive: %s", from, to, rate)
	}
	return rate, nil
}
