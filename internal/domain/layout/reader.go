// Package layout converts PDF statements into positioned text fragments and
// holds the per-layout heuristic rule sets. Everything downstream (parsing,
// classification) is driven by the rule tables defined here, so supporting a
// new statement layout means adding a rule set, not touching core logic.
package layout

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoPages indicates a PDF with no readable pages.
var ErrNoPages = errors.New("no readable pages")

// Error is a document-fatal extraction failure: the PDF is unreadable,
// encrypted, or contains no extractable text.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("layout extraction failed for %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fragment is a positioned text token on a page. Y grows upward (PDF
// coordinates), so larger Y means closer to the top of the page.
type Fragment struct {
	Page int
	X    float64
	Y    float64
	W    float64
	Text string
}

// Page holds the fragments of one page, ordered top-to-bottom then
// left-to-right.
type Page struct {
	Number    int
	Fragments []Fragment
}

// ReadFile opens a PDF and extracts positioned text fragments per page.
// Characters are merged into phrases using font-size-relative gap thresholds.
func ReadFile(path string) ([]Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	defer f.Close()

	total := r.NumPage()
	if total == 0 {
		return nil, &Error{Path: path, Err: ErrNoPages}
	}

	pages := make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		chars := p.Content().Text
		if len(chars) == 0 {
			continue
		}
		pages = append(pages, Page{Number: i, Fragments: assemble(chars, i)})
	}

	if len(pages) == 0 {
		return nil, &Error{Path: path, Err: ErrNoPages}
	}
	return pages, nil
}

// assemble merges character-level text into phrase fragments. Characters on
// the same baseline (within a nudge) whose horizontal gap is below a
// font-relative threshold belong to the same fragment; a gap up to the word
// threshold inserts a space, anything wider starts a new fragment.
func assemble(chars []pdf.Text, pageNum int) []Fragment {
	const nudge = 1.0

	sorted := make([]pdf.Text, len(chars))
	copy(sorted, chars)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	// Snap near-identical baselines together so a second sort groups whole
	// visual rows.
	prev := math.Inf(-1)
	for i := range sorted {
		if sorted[i].Y != prev && math.Abs(sorted[i].Y-prev) < nudge {
			sorted[i].Y = prev
		} else {
			prev = sorted[i].Y
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var frags []Fragment
	for i := 0; i < len(sorted); {
		// Bound the current visual row.
		j := i + 1
		for j < len(sorted) && sorted[j].Y == sorted[i].Y {
			j++
		}

		for k := i; k < j; {
			ck := sorted[k]
			var b strings.Builder
			b.WriteString(ck.S)
			end := ck.X + ck.W
			charGap := ck.FontSize / 6
			wordGap := ck.FontSize * 2 / 3

			l := k + 1
			for l < j {
				cl := sorted[l]
				if cl.X <= end+charGap {
					b.WriteString(cl.S)
					end = cl.X + cl.W
					l++
					continue
				}
				if cl.X <= end+wordGap {
					b.WriteString(" ")
					b.WriteString(cl.S)
					end = cl.X + cl.W
					l++
					continue
				}
				break
			}

			text := strings.TrimSpace(b.String())
			if text != "" {
				frags = append(frags, Fragment{
					Page: pageNum,
					X:    ck.X,
					Y:    ck.Y,
					W:    end - ck.X,
					Text: text,
				})
			}
			k = l
		}
		i = j
	}
	return frags
}
