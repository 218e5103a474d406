package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()

	t.Run("matches section headings", func(t *testing.T) {
		label, ok := rules.MatchSection("Payments and Credits")
		require.True(t, ok)
		assert.Equal(t, "Payments and Credits", label)

		label, ok = rules.MatchSection("  PURCHASES: ")
		require.True(t, ok)
		assert.Equal(t, "Purchases", label)

		_, ok = rules.MatchSection("12/20 COFFEE SHOP 4.50")
		assert.False(t, ok)
	})

	t.Run("detects boilerplate", func(t *testing.T) {
		assert.True(t, rules.IsBoilerplate("Page 2 of 4"))
		assert.True(t, rules.IsBoilerplate("Continued on next page"))
		assert.False(t, rules.IsBoilerplate("12/20 COFFEE SHOP 4.50"))
	})

	t.Run("detects subtotal lines", func(t *testing.T) {
		assert.True(t, rules.IsSubtotal("Total Purchases $123.45"))
		assert.True(t, rules.IsSubtotal("Previous Balance 1,000.00"))
		assert.True(t, rules.IsSubtotal("Balance Forward 55.00"))
		assert.False(t, rules.IsSubtotal("12/20 TOTAL WINE 4.50"))
	})

	t.Run("extracts statement period", func(t *testing.T) {
		start, end, ok := rules.MatchPeriod("Statement Period: 12/15/2023 - 01/14/2024")
		require.True(t, ok)
		assert.Equal(t, "12/15/2023", start)
		assert.Equal(t, "01/14/2024", end)
	})

	t.Run("extracts account identifier", func(t *testing.T) {
		acct, ok := rules.MatchAccount("Account Number: ****1234")
		require.True(t, ok)
		assert.Equal(t, "****1234", acct)
	})
}

func TestSignFor(t *testing.T) {
	rules := DefaultRules()

	t.Run("section policy overrides glyph", func(t *testing.T) {
		// Credit section forces positive even with a negative glyph.
		assert.Equal(t, 1, rules.SignFor("Payments and Credits", true))
		assert.Equal(t, 1, rules.SignFor("Payments and Credits", false))
		// Debit sections force negative.
		assert.Equal(t, -1, rules.SignFor("Purchases", false))
		assert.Equal(t, -1, rules.SignFor("Fees", false))
		assert.Equal(t, -1, rules.SignFor("Interest", true))
	})

	t.Run("unknown section falls back to glyph", func(t *testing.T) {
		assert.Equal(t, -1, rules.SignFor("unknown", true))
		assert.Equal(t, 1, rules.SignFor("unknown", false))
	})

	t.Run("glyph policy trusts the glyph", func(t *testing.T) {
		glyphRules := DefaultRules()
		glyphRules.SignPolicy = PolicyGlyph
		assert.Equal(t, -1, glyphRules.SignFor("Payments and Credits", true))
		assert.Equal(t, 1, glyphRules.SignFor("Purchases", false))
	})
}

func TestParseRules(t *testing.T) {
	t.Run("loads rule sets with defaults applied", func(t *testing.T) {
		doc := []byte(`
rulesets:
  - name: acmebank
    sign_policy: glyph
    sections:
      - label: Activity
        keywords: [account activity]
        sign: ""
`)
		sets, err := Parse(doc)
		require.NoError(t, err)
		require.Contains(t, sets, "acmebank")

		r := sets["acmebank"]
		assert.Equal(t, PolicyGlyph, r.SignPolicy)
		// Inherited from defaults.
		assert.Equal(t, 2.0, r.RowTolerance)
		assert.True(t, r.IsBoilerplate("Page 1 of 2"))

		label, ok := r.MatchSection("Account Activity")
		require.True(t, ok)
		assert.Equal(t, "Activity", label)
	})

	t.Run("rejects unnamed rule sets", func(t *testing.T) {
		_, err := Parse([]byte("rulesets:\n  - sign_policy: glyph\n"))
		assert.Error(t, err)
	})

	t.Run("rejects invalid patterns", func(t *testing.T) {
		_, err := Parse([]byte("rulesets:\n  - name: bad\n    boilerplate: ['[']\n"))
		assert.Error(t, err)
	})
}
