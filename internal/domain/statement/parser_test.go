package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extract/internal/domain/layout"
)

// page builds a fake layout page: each entry is one visual row rendered as
// column fragments at descending Y positions.
func page(number int, rows ...[]string) layout.Page {
	p := layout.Page{Number: number}
	y := 750.0
	for _, cols := range rows {
		x := 50.0
		for _, col := range cols {
			p.Fragments = append(p.Fragments, layout.Fragment{
				Page: number, X: x, Y: y, W: float64(len(col)) * 5, Text: col,
			})
			x += 150
		}
		y -= 12
	}
	return p
}

func row(cols ...string) []string { return cols }

func TestParser_Parse(t *testing.T) {
	rules := layout.DefaultRules()

	t.Run("extracts context and tags sections", func(t *testing.T) {
		pages := []layout.Page{page(1,
			row("Account Number: ****1234"),
			row("Statement Period: 12/15/2023 - 01/14/2024"),
			row("Purchases"),
			row("12/20", "COFFEE SHOP", "4.50"),
			row("Payments and Credits"),
			row("01/02", "PAYMENT THANK YOU", "100.00"),
		)}

		parser := NewParser(rules, nil)
		ctx, lines, err := parser.Parse(pages)
		require.NoError(t, err)

		assert.Equal(t, "****1234", ctx.AccountID)
		assert.Equal(t, 2023, ctx.PeriodStart.Year())
		assert.Equal(t, 2024, ctx.PeriodEnd.Year())

		// Section headings are consumed; header rows pass through tagged unknown
		// and are ignored downstream as non-candidates.
		require.Len(t, lines, 4)
		assert.Equal(t, SectionUnknown, lines[0].Section)
		assert.Equal(t, "12/20 COFFEE SHOP 4.50", lines[2].Text)
		assert.Equal(t, "Purchases", lines[2].Section)
		assert.Equal(t, "01/02 PAYMENT THANK YOU 100.00", lines[3].Text)
		assert.Equal(t, "Payments and Credits", lines[3].Section)
	})

	t.Run("joins fragments on the same visual row left to right", func(t *testing.T) {
		p := layout.Page{Number: 1, Fragments: []layout.Fragment{
			{Page: 1, X: 300, Y: 700, Text: "4.50"},
			{Page: 1, X: 50, Y: 700.8, Text: "12/20"}, // within row tolerance
			{Page: 1, X: 120, Y: 700, Text: "COFFEE SHOP"},
			{Page: 1, X: 50, Y: 720, Text: "Statement Period: 12/15/2023 - 01/14/2024"},
		}}

		parser := NewParser(layout.DefaultRules(), nil)
		_, lines, err := parser.Parse([]layout.Page{p})
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, "12/20 COFFEE SHOP 4.50", lines[1].Text)
	})

	t.Run("tags lines before any heading as unknown", func(t *testing.T) {
		pages := []layout.Page{page(1,
			row("Statement Period: 12/15/2023 - 01/14/2024"),
			row("12/20", "COFFEE SHOP", "4.50"),
		)}

		parser := NewParser(rules, nil)
		_, lines, err := parser.Parse(pages)
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, "12/20 COFFEE SHOP 4.50", lines[1].Text)
		assert.Equal(t, SectionUnknown, lines[1].Section)
	})

	t.Run("skips boilerplate and lines repeated across pages", func(t *testing.T) {
		pages := []layout.Page{
			page(1,
				row("Statement Period: 12/15/2023 - 01/14/2024"),
				row("First National Bank of Examples"),
				row("Purchases"),
				row("12/20", "COFFEE SHOP", "4.50"),
				row("Page 1 of 2"),
			),
			page(2,
				row("First National Bank of Examples"),
				row("12/21", "BOOK STORE", "10.00"),
				row("Page 2 of 2"),
			),
		}

		parser := NewParser(rules, nil)
		_, lines, err := parser.Parse(pages)
		require.NoError(t, err)

		for _, line := range lines {
			assert.NotContains(t, line.Text, "First National")
			assert.NotContains(t, line.Text, "Page ")
		}
		require.Len(t, lines, 3)
		// Section carries across the page break.
		assert.Equal(t, "Purchases", lines[2].Section)
		assert.Equal(t, "12/21 BOOK STORE 10.00", lines[2].Text)
	})

	t.Run("identical transaction lines are not treated as repeats", func(t *testing.T) {
		pages := []layout.Page{
			page(1,
				row("Statement Period: 12/15/2023 - 01/14/2024"),
				row("Purchases"),
				row("12/20", "COFFEE SHOP", "4.50"),
			),
			page(2,
				row("12/20", "COFFEE SHOP", "4.50"),
			),
		}

		parser := NewParser(rules, nil)
		_, lines, err := parser.Parse(pages)
		require.NoError(t, err)
		// Period row plus both coffee lines: transaction-shaped repeats survive.
		assert.Len(t, lines, 3)
	})

	t.Run("fails without a statement period", func(t *testing.T) {
		pages := []layout.Page{page(1,
			row("Purchases"),
			row("12/20", "COFFEE SHOP", "4.50"),
		)}

		parser := NewParser(rules, nil)
		_, _, err := parser.Parse(pages)
		var herr *HeaderError
		require.ErrorAs(t, err, &herr)
	})
}
