package statement

import (
	"regexp"

	"github.com/FACorreiaa/statement-extract/internal/domain/layout"
)

// candidateRe matches the transaction shape: a date token, a description, and
// a trailing amount token on one logical row.
var candidateRe = regexp.MustCompile(`^(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\s+(.+?)\s+(\(?-?\$?[\d,]+\.\d{2}\)?-?)$`)

// Classifier converts tagged raw lines into transactions. It applies the
// continuation rule (one-line lookback, document order), drops subtotal
// lines, and enforces the section sign convention.
type Classifier struct {
	rules *layout.Rules
	cat   *Categorizer
}

// NewClassifier creates a classifier for one layout rule set.
func NewClassifier(rules *layout.Rules) *Classifier {
	return &Classifier{rules: rules, cat: NewCategorizer(rules)}
}

// Result holds the classified transactions and the accounting needed for the
// end-of-run summary: every dropped candidate is recorded, never lost
// silently.
type Result struct {
	Transactions []Transaction
	Dropped      []LineError
	LinesTotal   int
}

// open tracks the transaction currently accepting continuation lines, along
// with the region it was found in. A continuation must follow immediately on
// the same page and section.
type open struct {
	tx      Transaction
	page    int
	section string
	active  bool
}

// Classify processes lines in document order. Lines lacking a parseable
// date+amount pair extend the previous transaction's description when they
// immediately follow it in the same page region; subtotal lines close the
// open transaction and are dropped unconditionally.
func (c *Classifier) Classify(lines []RawLine, ctx Context) *Result {
	res := &Result{LinesTotal: len(lines)}

	var cur open
	flush := func() {
		if cur.active {
			res.Transactions = append(res.Transactions, cur.tx)
			cur = open{}
		}
	}

	for _, line := range lines {
		if c.rules.IsSubtotal(line.Text) {
			flush()
			continue
		}

		m := candidateRe.FindStringSubmatch(line.Text)
		if m == nil {
			// Continuation of a wrapped description, or noise.
			if cur.active && line.Page == cur.page && line.Section == cur.section {
				cur.tx.Description = normalizeSpace(cur.tx.Description + " " + line.Text)
			}
			continue
		}

		// A new candidate always closes the previous transaction, even if
		// this one fails normalization.
		flush()

		date, err := ParseDate(m[1], ctx)
		if err != nil {
			res.Dropped = append(res.Dropped, LineError{Page: line.Page, Line: line.Text, Err: err})
			continue
		}
		amount, err := ParseAmount(m[3])
		if err != nil {
			res.Dropped = append(res.Dropped, LineError{Page: line.Page, Line: line.Text, Err: err})
			continue
		}

		category := line.Section
		if category == SectionUnknown {
			category = c.cat.Infer(m[2])
		}

		if c.rules.SignFor(category, amount.IsNegative()) < 0 {
			amount = amount.Abs().Negate()
		} else {
			amount = amount.Abs()
		}

		cur = open{
			tx: Transaction{
				Date:        date,
				Description: normalizeSpace(m[2]),
				Amount:      amount,
				Category:    category,
			},
			page:    line.Page,
			section: line.Section,
			active:  true,
		}
	}
	flush()

	return res
}
