package statement

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/statement-extract/internal/domain/layout"
)

// descriptionHints maps description keywords to section labels for lines the
// parser could not place under a recognized section. The hint table rides on
// the rule set's canonical labels so the sign convention stays consistent.
var descriptionHints = []struct {
	keyword string
	label   string
}{
	{"payment", "Payments and Credits"},
	{"pymt", "Payments and Credits"},
	{"thank you", "Payments and Credits"},
	{"deposit", "Payments and Credits"},
	{"refund", "Payments and Credits"},
	{"credit", "Payments and Credits"},
	{"fee", "Fees"},
	{"charge", "Fees"},
	{"interest", "Interest"},
	{"withdrawal", "Withdrawals"},
	{"atm", "Withdrawals"},
}

// Categorizer infers a category for lines tagged with an unknown section.
// It runs a single-pass multi-pattern match over the description and falls
// back to per-token fuzzy matching to absorb statement typography quirks.
type Categorizer struct {
	matcher *ahocorasick.Matcher
	labels  []string
	tokens  []string
}

// NewCategorizer builds the keyword matcher. Keywords from the rule set's
// section table join the built-in description hints, so custom layouts extend
// inference without code changes.
func NewCategorizer(rules *layout.Rules) *Categorizer {
	var padded []string
	var tokens []string
	var labels []string

	add := func(kw, label string) {
		// Keywords match on word boundaries: the text is space-padded before
		// matching so "fee" cannot hit inside "coffee".
		padded = append(padded, " "+kw+" ")
		tokens = append(tokens, kw)
		labels = append(labels, label)
	}

	for _, hint := range descriptionHints {
		if _, ok := rules.SectionFor(hint.label); !ok {
			continue
		}
		add(hint.keyword, hint.label)
	}
	for _, sec := range rules.Sections {
		for _, kw := range sec.Keywords {
			add(kw, sec.Label)
		}
	}

	return &Categorizer{
		matcher: ahocorasick.NewStringMatcher(padded),
		labels:  labels,
		tokens:  tokens,
	}
}

// Infer returns the best-effort category for a description, or
// SectionUnknown when nothing matches.
func (c *Categorizer) Infer(description string) string {
	norm := strings.ToLower(normalizeSpace(description))
	if norm == "" {
		return SectionUnknown
	}

	if hits := c.matcher.Match([]byte(" " + norm + " ")); len(hits) > 0 {
		return c.labels[hits[0]]
	}

	// Fuzzy pass: tolerate one edit per word for longer keywords.
	for _, word := range strings.Fields(norm) {
		if len(word) < 4 {
			continue
		}
		for i, token := range c.tokens {
			if strings.ContainsRune(token, ' ') || len(token) < 4 {
				continue
			}
			if fuzzy.LevenshteinDistance(word, token) <= 1 {
				return c.labels[i]
			}
		}
	}
	return SectionUnknown
}
