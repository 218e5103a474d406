package statement

import (
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/FACorreiaa/statement-extract/internal/domain/layout"
)

// transactionShapeRe is a cheap guard for "looks like a transaction line":
// starts with a date token and ends with an amount token. Used only to keep
// the repeated-line filter from eating legitimate duplicate transactions.
var transactionShapeRe = regexp.MustCompile(`^\d{1,2}/\d{1,2}(/\d{2,4})?\s.*[\d.]\d(\)|-)?$`)

// Parser groups layout fragments into tagged logical rows and derives the
// statement context from header text.
type Parser struct {
	rules  *layout.Rules
	logger *slog.Logger
}

// NewParser creates a parser driven by the given layout rule set.
func NewParser(rules *layout.Rules, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{rules: rules, logger: logger}
}

// Parse consumes the layout reader's pages for one statement and produces the
// statement context plus the ordered candidate lines, each tagged with the
// active section. Repeated page boilerplate is skipped; a missing statement
// period is fatal for the document.
func (p *Parser) Parse(pages []layout.Page) (Context, []RawLine, error) {
	rows := p.buildRows(pages)

	ctx, err := p.extractContext(rows)
	if err != nil {
		return Context{}, nil, err
	}

	repeated := repeatedAcrossPages(rows)

	var (
		lines   []RawLine
		section = SectionUnknown
	)
	for _, row := range rows {
		if p.rules.IsBoilerplate(row.Text) || repeated[normalizeSpace(row.Text)] {
			continue
		}
		if label, ok := p.rules.MatchSection(row.Text); ok {
			section = label
			continue
		}
		row.Section = section
		lines = append(lines, row)
	}

	if section == SectionUnknown {
		p.logger.Debug("no section headings recognized; lines tagged unknown",
			"account", ctx.AccountID)
	}
	return ctx, lines, nil
}

// buildRows groups fragments into visual rows. Fragments whose vertical
// distance is within the rule set's tolerance share a row; within a row they
// order left-to-right and join with single spaces.
func (p *Parser) buildRows(pages []layout.Page) []RawLine {
	var rows []RawLine
	for _, page := range pages {
		frags := make([]layout.Fragment, len(page.Fragments))
		copy(frags, page.Fragments)
		sort.SliceStable(frags, func(i, j int) bool {
			if frags[i].Y != frags[j].Y {
				return frags[i].Y > frags[j].Y
			}
			return frags[i].X < frags[j].X
		})

		for i := 0; i < len(frags); {
			j := i + 1
			for j < len(frags) && math.Abs(frags[j].Y-frags[i].Y) <= p.rules.RowTolerance {
				j++
			}

			group := frags[i:j]
			sort.SliceStable(group, func(a, b int) bool { return group[a].X < group[b].X })
			parts := make([]string, 0, len(group))
			for _, f := range group {
				parts = append(parts, f.Text)
			}
			text := normalizeSpace(strings.Join(parts, " "))
			if text != "" {
				rows = append(rows, RawLine{
					Page: page.Number,
					Y:    frags[i].Y,
					Text: text,
				})
			}
			i = j
		}
	}
	return rows
}

// extractContext scans rows for the statement period and account identifier.
func (p *Parser) extractContext(rows []RawLine) (Context, error) {
	var ctx Context
	foundPeriod := false

	for _, row := range rows {
		if !foundPeriod {
			if startTok, endTok, ok := p.rules.MatchPeriod(row.Text); ok {
				start, errS := parseHeaderDate(startTok)
				end, errE := parseHeaderDate(endTok)
				if errS == nil && errE == nil && !end.Before(start) {
					ctx.PeriodStart = start
					ctx.PeriodEnd = end
					foundPeriod = true
				}
			}
		}
		if ctx.AccountID == "" {
			if acct, ok := p.rules.MatchAccount(row.Text); ok {
				ctx.AccountID = acct
			}
		}
		if foundPeriod && ctx.AccountID != "" {
			break
		}
	}

	if !foundPeriod {
		return Context{}, &HeaderError{Missing: "statement period"}
	}
	return ctx, nil
}

// repeatedAcrossPages flags non-transaction lines whose identical text shows
// up on two or more pages: repeated headers/footers the boilerplate patterns
// did not anticipate.
func repeatedAcrossPages(rows []RawLine) map[string]bool {
	pagesByText := make(map[string]map[int]bool)
	for _, row := range rows {
		key := normalizeSpace(row.Text)
		if transactionShapeRe.MatchString(key) {
			continue
		}
		if pagesByText[key] == nil {
			pagesByText[key] = make(map[int]bool)
		}
		pagesByText[key][row.Page] = true
	}

	repeated := make(map[string]bool)
	for text, pages := range pagesByText {
		if len(pages) >= 2 {
			repeated[text] = true
		}
	}
	return repeated
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
