package layout

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// SignRule states how a section signs its amounts: credit sections emit
// positive amounts (money in), debit sections negative (money out).
type SignRule string

const (
	SignCredit SignRule = "credit"
	SignDebit  SignRule = "debit"
	SignNone   SignRule = ""
)

// SignPolicy selects the source of truth for amount signs.
// PolicySection (the documented statement convention) lets the section
// override the printed glyph; PolicyGlyph trusts the glyph, for layouts
// that render a single running list without credit/debit sections.
type SignPolicy string

const (
	PolicySection SignPolicy = "section"
	PolicyGlyph   SignPolicy = "glyph"
)

// SectionRule maps a statement section heading to a canonical category label
// and a sign convention.
type SectionRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
	Sign     SignRule `yaml:"sign"`
}

// Rules is the complete heuristic table for one statement layout: boilerplate
// patterns, section headings, header extraction patterns, and sign policy.
// Core parsing and classification logic consult this table and carry no
// layout knowledge of their own.
type Rules struct {
	Name         string        `yaml:"name"`
	RowTolerance float64       `yaml:"row_tolerance"`
	SignPolicy   SignPolicy    `yaml:"sign_policy"`
	Boilerplate  []string      `yaml:"boilerplate"`
	Subtotals    []string      `yaml:"subtotals"`
	Sections     []SectionRule `yaml:"sections"`
	Period       []string      `yaml:"period"`
	Account      []string      `yaml:"account"`

	boilerplateRe []*regexp.Regexp
	subtotalRe    []*regexp.Regexp
	periodRe      []*regexp.Regexp
	accountRe     []*regexp.Regexp
}

// rulesFile is the YAML document shape: one file may carry several rule sets.
type rulesFile struct {
	RuleSets []*Rules `yaml:"rulesets"`
}

// DefaultRules returns the built-in rule set covering common US credit card
// and checking statement layouts.
func DefaultRules() *Rules {
	r := &Rules{
		Name:         "default",
		RowTolerance: 2.0,
		SignPolicy:   PolicySection,
		Boilerplate: []string{
			`(?i)^page \d+( of \d+)?$`,
			`(?i)continued on (the )?next page`,
			`(?i)^statement of account$`,
			`(?i)^customer service`,
			`(?i)^member fdic`,
			`(?i)^please see reverse`,
		},
		Subtotals: []string{
			`(?i)^(sub)?total\b`,
			`(?i)^total (purchases|payments|fees|interest|for this period)\b`,
			`(?i)balance forward`,
			`(?i)^(previous|new|beginning|ending) balance\b`,
		},
		Sections: []SectionRule{
			{Label: "Payments and Credits", Keywords: []string{"payments and credits", "payments & credits", "payments and other credits", "deposits and credits", "other credits", "deposits"}, Sign: SignCredit},
			{Label: "Purchases", Keywords: []string{"purchases", "purchases and adjustments", "purchases and other charges"}, Sign: SignDebit},
			{Label: "Fees", Keywords: []string{"fees", "fees charged", "service charges"}, Sign: SignDebit},
			{Label: "Interest", Keywords: []string{"interest charged", "interest"}, Sign: SignDebit},
			{Label: "Withdrawals", Keywords: []string{"withdrawals", "other withdrawals", "electronic payments", "checks paid"}, Sign: SignDebit},
		},
		Period: []string{
			`(?i)statement period[:\s]+(\d{1,2}/\d{1,2}/\d{2,4})\s*(?:-|–|to|through)\s*(\d{1,2}/\d{1,2}/\d{2,4})`,
			`(?i)(?:opening|billing) (?:date|cycle)[:\s]+(\d{1,2}/\d{1,2}/\d{2,4})\s*(?:-|–|to|through)\s*(\d{1,2}/\d{1,2}/\d{2,4})`,
			`(\d{1,2}/\d{1,2}/\d{2,4})\s*(?:-|–)\s*(\d{1,2}/\d{1,2}/\d{2,4})`,
		},
		Account: []string{
			`(?i)account (?:number|#|no\.?)[:\s]*([\w*-]+)`,
			`(?i)account ending(?: in)?[:\s]*(\d{4})`,
		},
	}
	if err := r.Compile(); err != nil {
		panic(err)
	}
	return r
}

// LoadFile reads rule sets from a YAML file and returns them keyed by name.
// Loaded sets inherit defaults for fields they leave empty.
func LoadFile(path string) (map[string]*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes rule sets from YAML bytes.
func Parse(data []byte) (map[string]*Rules, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	defaults := DefaultRules()
	sets := make(map[string]*Rules, len(file.RuleSets))
	for _, r := range file.RuleSets {
		if r.Name == "" {
			return nil, fmt.Errorf("rule set missing name")
		}
		r.applyDefaults(defaults)
		if err := r.Compile(); err != nil {
			return nil, fmt.Errorf("rule set %q: %w", r.Name, err)
		}
		sets[r.Name] = r
	}
	return sets, nil
}

func (r *Rules) applyDefaults(d *Rules) {
	if r.RowTolerance == 0 {
		r.RowTolerance = d.RowTolerance
	}
	if r.SignPolicy == "" {
		r.SignPolicy = d.SignPolicy
	}
	if len(r.Boilerplate) == 0 {
		r.Boilerplate = d.Boilerplate
	}
	if len(r.Subtotals) == 0 {
		r.Subtotals = d.Subtotals
	}
	if len(r.Sections) == 0 {
		r.Sections = d.Sections
	}
	if len(r.Period) == 0 {
		r.Period = d.Period
	}
	if len(r.Account) == 0 {
		r.Account = d.Account
	}
}

// Compile builds the regexp tables. Must be called once before use; LoadFile
// and DefaultRules do this for you.
func (r *Rules) Compile() error {
	compile := func(sources []string) ([]*regexp.Regexp, error) {
		out := make([]*regexp.Regexp, 0, len(sources))
		for _, src := range sources {
			re, err := regexp.Compile(src)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", src, err)
			}
			out = append(out, re)
		}
		return out, nil
	}

	var err error
	if r.boilerplateRe, err = compile(r.Boilerplate); err != nil {
		return err
	}
	if r.subtotalRe, err = compile(r.Subtotals); err != nil {
		return err
	}
	if r.periodRe, err = compile(r.Period); err != nil {
		return err
	}
	if r.accountRe, err = compile(r.Account); err != nil {
		return err
	}
	return nil
}

// IsBoilerplate reports whether a line matches a known header/footer pattern.
func (r *Rules) IsBoilerplate(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, re := range r.boilerplateRe {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// IsSubtotal reports whether a line is a subtotal/total/balance-forward line.
// These are dropped unconditionally and never treated as continuations.
func (r *Rules) IsSubtotal(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, re := range r.subtotalRe {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// MatchSection reports whether a line is a section heading, returning the
// canonical label. Headings are short lines consisting essentially of the
// keyword, so keyword match requires the line to not extend far beyond it.
func (r *Rules) MatchSection(line string) (string, bool) {
	norm := strings.ToLower(strings.TrimSpace(line))
	norm = strings.TrimRight(norm, ":")
	for _, sec := range r.Sections {
		for _, kw := range sec.Keywords {
			if norm == kw {
				return sec.Label, true
			}
		}
	}
	return "", false
}

// SectionFor returns the rule for a canonical section label.
func (r *Rules) SectionFor(label string) (SectionRule, bool) {
	for _, sec := range r.Sections {
		if sec.Label == label {
			return sec, true
		}
	}
	return SectionRule{}, false
}

// SignFor resolves the final sign for an amount given its section and the
// printed glyph sign. Under PolicySection the section convention is the single
// source of truth; the glyph only decides for unknown sections. Returns -1
// for debit, +1 for credit.
func (r *Rules) SignFor(sectionLabel string, glyphNegative bool) int {
	glyph := 1
	if glyphNegative {
		glyph = -1
	}
	if r.SignPolicy == PolicyGlyph {
		return glyph
	}
	sec, ok := r.SectionFor(sectionLabel)
	if !ok || sec.Sign == SignNone {
		return glyph
	}
	if sec.Sign == SignCredit {
		return 1
	}
	return -1
}

// MatchPeriod extracts the raw statement period tokens from header text.
func (r *Rules) MatchPeriod(text string) (start, end string, ok bool) {
	for _, re := range r.periodRe {
		if m := re.FindStringSubmatch(text); len(m) == 3 {
			return m[1], m[2], true
		}
	}
	return "", "", false
}

// MatchAccount extracts the account identifier from header text.
func (r *Rules) MatchAccount(text string) (string, bool) {
	for _, re := range r.accountRe {
		if m := re.FindStringSubmatch(text); len(m) == 2 {
			return m[1], true
		}
	}
	return "", false
}
