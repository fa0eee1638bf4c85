// Package money implements exact currency amounts counted in minor units (paise).
//
// All arithmetic and comparisons are done on the int64 minor-unit count. Floating
// point only appears at the edges, when converting from or to major units for
// construction and display. Overflow is not guarded.
package money

import "github.com/shopspring/decimal"

// Currency is the suffix used when formatting amounts.
const Currency = "INR"

// minorDigits is the number of minor-unit decimal places in one major unit.
const minorDigits = 2

// Money is an immutable amount of minor currency units.
type Money struct {
	minor int64
}

// New returns an amount of minor units.
func New(minor int64) Money {
	return Money{minor: minor}
}

// FromMajor converts a major-unit amount, rounding half away from zero to the
// nearest minor unit.
func FromMajor(major float64) Money {
	d := decimal.NewFromFloat(major).Shift(minorDigits).Round(0)
	return Money{minor: d.IntPart()}
}

// ParseMajor parses a decimal string such as "10.50" into Money.
func ParseMajor(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{minor: d.Shift(minorDigits).Round(0).IntPart()}, nil
}

func (m Money) Minor() int64 { return m.minor }

// ToMajor returns the amount in major units. Display only.
func (m Money) ToMajor() float64 {
	return decimal.New(m.minor, -minorDigits).InexactFloat64()
}

func (m Money) Add(o Money) Money { return Money{minor: m.minor + o.minor} }

func (m Money) Sub(o Money) Money { return Money{minor: m.minor - o.minor} }

// Mul multiplies the amount by an integer count.
func (m Money) Mul(n int64) Money { return Money{minor: m.minor * n} }

func (m Money) GreaterThan(o Money) bool { return m.minor > o.minor }

func (m Money) GreaterOrEqual(o Money) bool { return m.minor >= o.minor }

func (m Money) IsZero() bool { return m.minor == 0 }

// String formats the amount with two decimals and the currency suffix, e.g. "10.00 INR".
func (m Money) String() string {
	return decimal.New(m.minor, -minorDigits).StringFixed(minorDigits) + " " + Currency
}

// MarshalText renders the same text as String so JSON responses stay readable.
func (m Money) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
