/*
money.go - Fixed-point currency value type

PURPOSE:
  All monetary amounts in the engine flow through Money. Internally a Money
  is an integer count of minor units (pence), which makes addition and
  comparison exact. Decimal values only appear at the boundaries:
  construction, display, and the pro-rating formulas.

ROUNDING POLICY:
  - Construction from a decimal rounds half-up to 2 places.
  - MulDiv rounds once, at the final step. Never round intermediates:
    rent * 7 / 30.44 is computed fully in decimal and rounded at the end.

WHY NOT FLOAT?
  0.1 + 0.2 != 0.3. A ledger that drifts by a penny per operation is a
  ledger nobody trusts. Integer pence plus shopspring/decimal at the
  boundary avoids the entire class of bugs.

USAGE:
  rent := lodger.MustParseMoney("800.00")
  first := rent.MulInt(2)                              // 1600.00
  weekly := rent.MulDiv(decimal.NewFromInt(7), lodger.DaysPerMonth)

SEE ALSO:
  - schedule.go: Uses MulDiv for periodic rent amounts
  - funds.go: Pool arithmetic
*/
package lodger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Integer pence with a decimal boundary
// =============================================================================

// Money is an amount of GBP held as whole pence.
// The zero value is £0.00 and is ready to use.
type Money struct {
	pence int64
}

// NewMoney converts a decimal pound amount to Money, rounding half-up
// to two decimal places.
func NewMoney(d decimal.Decimal) Money {
	return Money{pence: d.Round(2).Mul(decimal.NewFromInt(100)).IntPart()}
}

// MoneyFromPence builds a Money from a raw minor-unit count.
func MoneyFromPence(p int64) Money { return Money{pence: p} }

// MoneyFromFloat converts a float pound amount, rounding half-up to 2dp.
// Intended for API boundaries only.
func MoneyFromFloat(f float64) Money { return NewMoney(decimal.NewFromFloat(f)) }

// MustParseMoney parses a decimal string ("800.00"). Panics on malformed
// input; use for constants and tests.
func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("lodger: bad money literal %q: %v", s, err))
	}
	return NewMoney(d)
}

// =============================================================================
// ARITHMETIC
// =============================================================================

func (m Money) Add(o Money) Money { return Money{pence: m.pence + o.pence} }
func (m Money) Sub(o Money) Money { return Money{pence: m.pence - o.pence} }
func (m Money) Neg() Money        { return Money{pence: -m.pence} }

// MulInt scales by a whole number. Exact, no rounding involved.
func (m Money) MulInt(n int64) Money { return Money{pence: m.pence * n} }

// MulDiv computes m * num / den in full decimal precision and rounds
// half-up to 2dp at the final step only.
func (m Money) MulDiv(num, den decimal.Decimal) Money {
	return NewMoney(m.Decimal().Mul(num).DivRound(den, 8))
}

// MulRound scales by an arbitrary decimal factor, rounding the result.
func (m Money) MulRound(factor decimal.Decimal) Money {
	return NewMoney(m.Decimal().Mul(factor))
}

// =============================================================================
// COMPARISON & PREDICATES
// =============================================================================

func (m Money) Equal(o Money) bool       { return m.pence == o.pence }
func (m Money) GreaterThan(o Money) bool { return m.pence > o.pence }
func (m Money) LessThan(o Money) bool    { return m.pence < o.pence }
func (m Money) IsZero() bool             { return m.pence == 0 }
func (m Money) IsNegative() bool         { return m.pence < 0 }
func (m Money) IsPositive() bool         { return m.pence > 0 }

// WithinTolerance reports whether m and o differ by at most tol.
// Used for the deduction split check (±0.01).
func (m Money) WithinTolerance(o, tol Money) bool {
	diff := m.pence - o.pence
	if diff < 0 {
		diff = -diff
	}
	return diff <= tol.pence
}

// =============================================================================
// CONVERSION
// =============================================================================

// Pence returns the raw minor-unit count. Persistence uses this.
func (m Money) Pence() int64 { return m.pence }

// Decimal returns the pound amount as a decimal with 2dp.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.pence, -2)
}

// Float64 returns the pound amount for DTO serialization.
func (m Money) Float64() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

func (m Money) String() string { return m.Decimal().StringFixed(2) }
