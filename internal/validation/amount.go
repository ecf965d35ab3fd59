package validation

import (
	"fmt"
	"strings"

	pkgerrors "github.com/honeynil/bank-ledger/pkg/errors"
	"github.com/shopspring/decimal"
)

// ParseAmount parses a balance. Empty means zero; negative balances are allowed.
func ParseAmount(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q", pkgerrors.ErrInvalidInput, value)
	}
	return d, nil
}

// ParsePositiveAmount parses a transfer amount.
func ParsePositiveAmount(value string) (decimal.Decimal, error) {
	d, err := ParseAmount(value)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", pkgerrors.ErrInvalidAmount, d)
	}
	return d, nil
}
