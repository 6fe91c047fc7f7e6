package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// parseDecimal reads a decimal string. field names the input in the error.
func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q", ErrMalformedDecimal, field, s)
	}
	return d, nil
}

func parseStep(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return one, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s %q", ErrInvalidStep, field, s)
	}
	return d, nil
}

// isMultiple reports whether d sits exactly on the step grid.
func isMultiple(d, step decimal.Decimal) bool {
	return d.Mod(step).IsZero()
}

// fundsToSize is floor(funds / price) on the size grid, computed without
// an intermediate inexact division.
func fundsToSize(funds, price, step decimal.Decimal) decimal.Decimal {
	if !funds.IsPositive() || !price.IsPositive() {
		return decimal.Zero
	}
	n, _ := funds.QuoRem(price.Mul(step), 0)
	return n.Mul(step)
}
