// Package numeric implements the exact fraction representation backing every
// monetary amount in the ledger. Amounts are stored as an integer numerator
// over an integer denominator, the same shape GnuCash uses on disk, so sums
// and zero comparisons never go through floating point.
package numeric

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Amount is an immutable exact fraction Num/Denom. Denominators are small
// powers of ten for currencies (100, 1000, ...) or share-count scales for
// securities. All arithmetic returns a new Amount.
type Amount struct {
	Num   int64
	Denom int64
}

// New builds an amount from a numerator and denominator.
func New(num, denom int64) Amount {
	return Amount{Num: num, Denom: denom}
}

// Zero returns the zero amount at the given scale.
func Zero(denom int64) Amount {
	return Amount{Num: 0, Denom: denom}
}

// FromFloat converts a float to a fraction over denom, rounding half away
// from zero. The denominator is returned unchanged.
func FromFloat(value float64, denom int64) Amount {
	return Amount{Num: int64(math.Round(value * float64(denom))), Denom: denom}
}

// FromString parses a decimal string into a fraction over denom, rounding
// half away from zero when the input carries more precision than denom holds.
func FromString(value string, denom int64) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, fmt.Errorf("numeric: parse %q: %w", value, err)
	}
	return FromDecimal(d, denom), nil
}

// FromDecimal converts a decimal into a fraction over denom, rounding half
// away from zero.
func FromDecimal(d decimal.Decimal, denom int64) Amount {
	num := d.Mul(decimal.NewFromInt(denom)).Round(0)
	return Amount{Num: num.IntPart(), Denom: denom}
}

// String renders the exact decimal expansion. The number of fractional digits
// follows the denominator's magnitude (100 -> 2 digits, 1000 -> 3, ...) and
// is emitted only when the remainder is non-zero; a zero denominator renders
// as "0" instead of failing.
func (a Amount) String() string {
	if a.Denom == 0 {
		return "0"
	}
	places := int32(len(strconv.FormatInt(a.Denom, 10)) - 1)
	q := decimal.NewFromInt(a.Num).DivRound(decimal.NewFromInt(a.Denom), places)
	if q.IsInteger() {
		return q.Truncate(0).String()
	}
	return q.StringFixed(places)
}

// Decimal returns the amount as a decimal value. Exact for power-of-ten
// denominators; used only at conversion and reporting boundaries, never for
// balance checks.
func (a Amount) Decimal() decimal.Decimal {
	if a.Denom == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(a.Num).Div(decimal.NewFromInt(a.Denom))
}

// Neg returns the negated amount.
func (a Amount) Neg() Amount {
	return Amount{Num: -a.Num, Denom: a.Denom}
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a.Num == 0
}

// Sign returns -1, 0 or 1.
func (a Amount) Sign() int {
	switch {
	case a.Num < 0:
		return -1
	case a.Num > 0:
		return 1
	default:
		return 0
	}
}

// Add sums two amounts exactly, normalising denominators via their least
// common multiple when they differ.
func (a Amount) Add(b Amount) Amount {
	if a.Denom == b.Denom {
		return Amount{Num: a.Num + b.Num, Denom: a.Denom}
	}
	if a.Denom == 0 {
		return b
	}
	if b.Denom == 0 {
		return a
	}
	l := lcm(a.Denom, b.Denom)
	return Amount{Num: a.Num*(l/a.Denom) + b.Num*(l/b.Denom), Denom: l}
}

// Sub subtracts b from a.
func (a Amount) Sub(b Amount) Amount {
	return a.Add(b.Neg())
}

// Cmp compares two amounts exactly, returning -1, 0 or 1.
func (a Amount) Cmp(b Amount) int {
	if a.Denom == b.Denom {
		return cmpInt(a.Num, b.Num)
	}
	l := lcm(a.Denom, b.Denom)
	return cmpInt(a.Num*(l/a.Denom), b.Num*(l/b.Denom))
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	return a / gcd(a, b) * b
}
