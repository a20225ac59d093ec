package fees

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/mealora/mealora-backend/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// Calculator derives the platform fee withheld from an order total.
type Calculator struct {
	percent decimal.Decimal
}

// NewCalculator builds a calculator for the given whole-number percentage.
func NewCalculator(percent int) (*Calculator, error) {
	if percent < 0 || percent > 100 {
		return nil, fmt.Errorf("fee percent must be between 0 and 100, got %d", percent)
	}
	return &Calculator{percent: decimal.NewFromInt(int64(percent))}, nil
}

// Fee returns the platform fee in cents, rounded half up.
func (c *Calculator) Fee(totalCents int64) int64 {
	fee := decimal.NewFromInt(totalCents).
		Mul(c.percent).
		Div(oneHundred).
		Round(0)
	return fee.IntPart()
}

// Split returns the fee and the merchant net for the given total.
func (c *Calculator) Split(totalCents int64) (feeCents, netCents int64) {
	feeCents = c.Fee(totalCents)
	return feeCents, totalCents - feeCents
}

// SplitWithOverride applies an explicit fee instead of the percentage when
// one is provided. The override must stay within [0, total].
func (c *Calculator) SplitWithOverride(totalCents int64, overrideCents *int64) (feeCents, netCents int64, err error) {
	if overrideCents == nil {
		feeCents, netCents = c.Split(totalCents)
		return feeCents, netCents, nil
	}
	if *overrideCents < 0 {
		return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "fee override must not be negative")
	}
	if *overrideCents > totalCents {
		return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "fee override must not exceed the order total")
	}
	return *overrideCents, totalCents - *overrideCents, nil
}
