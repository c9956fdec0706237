// Package money holds the decimal arithmetic shared by dispatch totals and
// ledger balances. Values are never rounded mid-calculation; Round is only
// applied where amounts leave the service.
package money

import (
	"strings"

	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const displayPlaces = 2

var hundred = decimal.NewFromInt(100)

// ErrInvalidExchangeRate is returned when converting with a rate <= 0.
var ErrInvalidExchangeRate = pkgerrors.New(pkgerrors.CodeValidation, "exchange rate must be greater than 0")

// Zero is a convenience zero value.
var Zero = decimal.Zero

// Convert turns a supplier-currency amount into base currency.
func Convert(amount, exchangeRate decimal.Decimal) (decimal.Decimal, error) {
	if !exchangeRate.IsPositive() {
		return decimal.Zero, ErrInvalidExchangeRate
	}
	return amount.Div(exchangeRate), nil
}

// Markup applies a percentage markup: amount x (1 + percentage/100).
func Markup(amount, percentage decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(1).Add(percentage.Div(hundred)))
}

// Round rounds to two decimal places for presentation.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(displayPlaces)
}

// Sum adds every amount.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Parse reads a user-supplied amount. Empty input yields zero.
func Parse(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount "+raw)
	}
	return value, nil
}

// ParseNonNegative parses raw and rejects negative values.
func ParseNonNegative(raw string) (decimal.Decimal, error) {
	value, err := Parse(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if value.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	return value, nil
}
