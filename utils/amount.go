package utils

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roudra323/ArtBlock-Foundry/models"
)

// TokenDecimals is the number of fractional digits every platform and
// community currency carries.
const TokenDecimals = 18

// ParseAmount parses a caller-supplied amount string into a decimal. Amounts
// must be finite positive numbers with at most TokenDecimals fractional
// digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", models.ErrInvalidAmount, raw)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q must be positive", models.ErrInvalidAmount, raw)
	}
	if d.Exponent() < -TokenDecimals {
		return decimal.Zero, fmt.Errorf("%w: %q exceeds %d fractional digits", models.ErrInvalidAmount, raw, TokenDecimals)
	}
	return d, nil
}

// ParseAllowance parses a caller-supplied allowance string. Zero is valid so
// an owner can revoke a prior approval; the fractional-digit cap matches
// ParseAmount.
func ParseAllowance(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", models.ErrInvalidAmount, raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q must not be negative", models.ErrInvalidAmount, raw)
	}
	if d.Exponent() < -TokenDecimals {
		return decimal.Zero, fmt.Errorf("%w: %q exceeds %d fractional digits", models.ErrInvalidAmount, raw, TokenDecimals)
	}
	return d, nil
}

// ParseRate parses a proposed exchange rate without the positivity bound
// checks; governance applies its own min/max rule.
func ParseRate(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", models.ErrInvalidAmount, raw)
	}
	return d, nil
}
