// Package money provides currency-safe arithmetic for statement amounts using
// integer cents. It wraps go-money for safe arithmetic and shopspring/decimal
// for precise string conversion, so extracted amounts survive the round trip
// to CSV without floating-point drift.
package money

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Statements carry a single implicit currency; USD is the canonical code used
// for internal arithmetic. The CSV schema emits bare signed decimals.
const currencyCode = "USD"

// Amount is a signed monetary value backed by integer cents.
// The zero value is a valid zero amount.
type Amount struct {
	m *money.Money
}

// FromCents creates an Amount from minor units.
func FromCents(cents int64) Amount {
	return Amount{m: money.New(cents, currencyCode)}
}

// FromDecimal creates an Amount from a decimal value, rounding to cents.
func FromDecimal(d decimal.Decimal) Amount {
	cents := d.Mul(decimal.New(1, 2)).Round(0).IntPart()
	return FromCents(cents)
}

// FromString parses a plain decimal string like "-4.50" or "1234.56".
// Currency symbols and separators must already be stripped; use
// statement.ParseAmount for raw statement tokens.
func FromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// Zero returns a zero amount.
func Zero() Amount {
	return FromCents(0)
}

// Cents returns the amount in minor units.
func (a Amount) Cents() int64 {
	if a.m == nil {
		return 0
	}
	return a.m.Amount()
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.m == nil || a.m.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool {
	return a.m != nil && a.m.IsNegative()
}

// IsPositive reports whether the amount is above zero.
func (a Amount) IsPositive() bool {
	return a.m != nil && a.m.IsPositive()
}

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	if a.m == nil {
		return Zero()
	}
	return Amount{m: a.m.Absolute()}
}

// Negate returns the negated value.
func (a Amount) Negate() Amount {
	if a.m == nil {
		return Zero()
	}
	return Amount{m: a.m.Negative()}
}

// Add sums two amounts. Both sides share the statement currency, so the
// go-money currency check cannot fail for values built through this package.
func (a Amount) Add(other Amount) Amount {
	if a.m == nil {
		return other
	}
	if other.m == nil {
		return a
	}
	sum, err := a.m.Add(other.m)
	if err != nil {
		panic(err)
	}
	return Amount{m: sum}
}

// Decimal converts to a decimal value in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.Cents(), -2)
}

// String formats the amount as a signed fixed-2 decimal, e.g. "-4.50".
// This is the exact form the CSV schema requires.
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

// Display formats the amount with a currency symbol for log output.
func (a Amount) Display() string {
	if a.m == nil {
		return "$0.00"
	}
	return a.m.Display()
}

// MarshalCSV implements gocsv marshaling as a fixed-2 decimal string.
func (a Amount) MarshalCSV() (string, error) {
	return a.String(), nil
}

// UnmarshalCSV implements gocsv unmarshaling from a decimal string.
func (a *Amount) UnmarshalCSV(s string) error {
	parsed, err := FromString(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
