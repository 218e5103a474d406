package statement

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-extract/pkg/money"
)

// DateParseError indicates a token that did not resolve to a date inside the
// statement's plausible window. The caller drops the line.
type DateParseError struct {
	Input  string
	Reason string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

// AmountParseError indicates a token with non-numeric residue after stripping
// currency decoration. The caller drops the line.
type AmountParseError struct {
	Input string
}

func (e *AmountParseError) Error() string {
	return fmt.Sprintf("invalid amount %q", e.Input)
}

var dateTokenRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?$`)

// ParseDate resolves a statement-local date token ("12/20", "12/20/23",
// "12/20/2023") to an absolute date using the statement context. Partial
// dates take the period's start year when the period spans a year boundary
// and the month falls at or after the start month, otherwise the end year.
// Dates outside [period start - 1 year, period end] are rejected to catch
// misresolved years.
func ParseDate(s string, ctx Context) (time.Time, error) {
	m := dateTokenRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, &DateParseError{Input: s, Reason: "unrecognized format"}
	}

	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, &DateParseError{Input: s, Reason: "out of range"}
	}

	var year int
	switch {
	case m[3] == "":
		year = resolveYear(month, ctx)
	case len(m[3]) == 2:
		yy, _ := strconv.Atoi(m[3])
		year = 2000 + yy
	default:
		year, _ = strconv.Atoi(m[3])
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, &DateParseError{Input: s, Reason: "no such calendar day"}
	}

	earliest := ctx.PeriodStart.AddDate(-1, 0, 0)
	if date.Before(earliest) || date.After(ctx.PeriodEnd) {
		return time.Time{}, &DateParseError{Input: s, Reason: "outside statement period window"}
	}
	return date, nil
}

func resolveYear(month int, ctx Context) int {
	if ctx.SpansYearBoundary() && month >= int(ctx.PeriodStart.Month()) {
		return ctx.PeriodStart.Year()
	}
	return ctx.PeriodEnd.Year()
}

// parseHeaderDate parses the full dates found in statement headers
// (MM/DD/YYYY or MM/DD/YY), with no period window to validate against.
func parseHeaderDate(s string) (time.Time, error) {
	for _, format := range []string{"1/2/2006", "1/2/06"} {
		if t, err := time.Parse(format, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &DateParseError{Input: s, Reason: "unrecognized format"}
}

// ParseAmount parses a statement amount token into a signed value. It strips
// currency symbols and thousands separators; parentheses or a leading or
// trailing minus mark the value negative. The glyph sign is preliminary: the
// classifier applies the section sign convention on top.
func ParseAmount(s string) (money.Amount, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return money.Amount{}, &AmountParseError{Input: s}
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = strings.Trim(cleaned, "()")
	}
	if strings.HasPrefix(cleaned, "-") {
		negative = true
		cleaned = strings.TrimPrefix(cleaned, "-")
	}
	if strings.HasSuffix(cleaned, "-") {
		negative = true
		cleaned = strings.TrimSuffix(cleaned, "-")
	}

	for _, sym := range []string{"$", "€", "£", "USD", "EUR", "GBP"} {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return money.Amount{}, &AmountParseError{Input: s}
	}
	if negative {
		d = d.Neg()
	}
	return money.FromDecimal(d), nil
}
