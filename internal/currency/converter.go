package currency

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/honeynil/bank-ledger/internal/infrastructure/observability"
	pkgerrors "github.com/honeynil/bank-ledger/pkg/errors"
	"github.com/shopspring/decimal"
)

const convertedPlaces = 2

type Converter struct {
	rates  RateProvider
	strict bool
}

// NewConverter builds a converter. In non-strict mode a failed lookup falls
// back to a 1:1 rate.
func NewConverter(rates RateProvider, strict bool) *Converter {
	return &Converter{rates: rates, strict: strict}
}

// Convert returns amount expressed in `to`. Same-currency conversion returns
// amount untouched; otherwise the result is rounded to cents.
func (c *Converter) Convert(ctx context.Context, from, to string, amount decimal.Decimal) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	rate, err := c.rates.Rate(ctx, from, to)
	if err != nil {
		if c.strict {
			return decimal.Zero, fmt.Errorf("%w: %s->%s: %v", pkgerrors.ErrRateUnavailable, from, to, err)
		}
		observability.RateLookups.WithLabelValues("converter", "fallback").Inc()
		slog.Warn("currency conversion failed, using 1:1 rate", "from", from, "to", to, "amount", amount, "error", err)
		return amount, nil
	}

	return amount.Mul(rate).Round(convertedPlaces), nil
}
