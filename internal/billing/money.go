package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is an amount in minor currency units.
type Cents int64

// CentsFromDecimal converts an amount in currency units to cents, rounding
// half up.
func CentsFromDecimal(d decimal.Decimal) Cents {
	return Cents(roundHalfUp(d.Shift(2)))
}

// Decimal returns the amount in currency units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String renders the amount with exactly two decimals.
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string in currency units.
func (c *Cents) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	*c = CentsFromDecimal(d)
	return nil
}

// roundHalfUp rounds to the nearest integer, ties toward positive infinity.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Add(decimal.New(5, -1)).Floor().IntPart()
}

// roundDiv returns n/d rounded half up, for d > 0.
func roundDiv(n, d int64) int64 {
	return floorDiv(2*n+d, 2*d)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
