// Package statement turns positioned PDF text into normalized transaction
// records. The parser groups fragments into tagged logical rows, the
// classifier converts rows into transactions, and the normalizer resolves
// statement-local date and amount formats against the statement context.
package statement

import (
	"fmt"
	"time"

	"github.com/FACorreiaa/statement-extract/pkg/money"
)

// SectionUnknown tags lines seen before any recognizable section heading.
// Classification treats it as a best-effort category inferred from the
// description.
const SectionUnknown = "unknown"

// Context is the per-document metadata derived once from header text and
// shared read-only by the classifier and normalizer. The statement period
// anchors year resolution for partial dates.
type Context struct {
	AccountID   string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// SpansYearBoundary reports whether the statement period crosses into a new
// year (e.g. a December statement running into January).
func (c Context) SpansYearBoundary() bool {
	return c.PeriodStart.Year() != c.PeriodEnd.Year()
}

// RawLine is one logical row of statement text: fragments on the same visual
// row joined left-to-right with normalized whitespace, tagged with the active
// section. Ephemeral; consumed by the classifier.
type RawLine struct {
	Page    int
	Y       float64
	Text    string
	Section string
}

// Transaction is the canonical output record. Immutable once created;
// amounts are always parsed (lines that fail normalization are dropped, never
// emitted with placeholders).
type Transaction struct {
	Date        time.Time
	Description string
	Amount      money.Amount
	Category    string
}

// LineError records a dropped line and why, so data loss stays observable in
// the run summary.
type LineError struct {
	Page int
	Line string
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("page %d: %v: %s", e.Page, e.Err, e.Line)
}

func (e LineError) Unwrap() error { return e.Err }

// HeaderError indicates the statement header lacked required metadata, which
// is fatal for the document since partial dates cannot be resolved.
type HeaderError struct {
	Missing string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("statement header missing %s", e.Missing)
}
