package lexicon

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDanish_Lookups(t *testing.T) {
	lex := Danish()

	got, ok := lex.Correct("hviøg")
	require.True(t, ok)
	assert.Equal(t, "hvidløg", got)

	_, ok = lex.Correct("hvidløg")
	assert.False(t, ok)

	got, ok = lex.ExpandUnit("spsk")
	require.True(t, ok)
	assert.Equal(t, "spiseske", got)

	got, ok = lex.Abbreviation("deciliter")
	require.True(t, ok)
	assert.Equal(t, "dl", got)

	assert.True(t, lex.IsSpecialUnit("fed"))
	assert.True(t, lex.IsSpecialUnit("håndfulde"))
	assert.False(t, lex.IsSpecialUnit("dl"))

	assert.True(t, lex.IsNonIngredient("styrke"))
	assert.True(t, lex.IsNonIngredient("mere"))
	assert.False(t, lex.IsNonIngredient("mælk"))

	got, ok = lex.Canonical("hvidløgsfed")
	require.True(t, ok)
	assert.Equal(t, "hvidløg", got)

	_, ok = lex.Canonical("hvidløg")
	assert.False(t, ok)
}

func TestDanish_SpecialUnitsAreNotAbbreviations(t *testing.T) {
	lex := Danish()

	for _, u := range lex.Tables().SpecialUnits {
		_, ok := lex.ExpandUnit(u)
		assert.False(t, ok, "special unit %q also listed as abbreviation", u)
	}
}

func TestNew_LowercasesAndTrims(t *testing.T) {
	lex := New(Tables{
		Corrections:      map[string]string{" Tomatcr ": "Tomater"},
		Units:            map[string]string{"DL": "Deciliter"},
		SpecialUnits:     []string{" FED"},
		NonIngredients:   []string{"Mere"},
		Aliases:          map[string][]string{"Persille": {"BladPersille"}},
		PrepTerms:        []string{"Hakket"},
		InstructionVerbs: []string{"RØR"},
	})

	got, ok := lex.Correct("tomatcr")
	require.True(t, ok)
	assert.Equal(t, "tomater", got)

	got, ok = lex.ExpandUnit("dl")
	require.True(t, ok)
	assert.Equal(t, "deciliter", got)

	assert.True(t, lex.IsSpecialUnit("fed"))
	assert.True(t, lex.IsNonIngredient("mere"))

	got, ok = lex.Canonical("bladpersille")
	require.True(t, ok)
	assert.Equal(t, "persille", got)

	assert.Equal(t, []string{"hakket"}, lex.PrepTerms())
	assert.Equal(t, []string{"rør"}, lex.InstructionVerbs())
}

func TestUnitTokens_LongestFirst(t *testing.T) {
	tokens := Danish().UnitTokens()
	require.NotEmpty(t, tokens)

	for i := 1; i < len(tokens); i++ {
		prev, cur := utf8.RuneCountInString(tokens[i-1]), utf8.RuneCountInString(tokens[i])
		assert.GreaterOrEqual(t, prev, cur, "%q before %q", tokens[i-1], tokens[i])
	}

	assert.Contains(t, tokens, "spsk")
	assert.Contains(t, tokens, "spiseske")
	assert.Contains(t, tokens, "knivspids")
	assert.Less(t, indexOf(tokens, "håndfulde"), indexOf(tokens, "håndfuld"))
	assert.Less(t, indexOf(tokens, "liter"), indexOf(tokens, "l"))
}

func TestUnitTokens_NoDuplicates(t *testing.T) {
	lex := New(Tables{
		Units:        map[string]string{"ds": "dåse", "dåse": "dåse"},
		SpecialUnits: []string{"fed"},
	})

	assert.ElementsMatch(t, []string{"dåse", "ds", "fed"}, lex.UnitTokens())
}

func TestTables_ReturnsCopy(t *testing.T) {
	lex := Danish()

	tables := lex.Tables()
	tables.Corrections["hviøg"] = "noget andet"
	tables.Aliases["hvidløg"][0] = "noget andet"
	tables.PrepTerms[0] = "noget andet"

	got, _ := lex.Correct("hviøg")
	assert.Equal(t, "hvidløg", got)

	canonical, ok := lex.Canonical("hvidløgsfed")
	require.True(t, ok)
	assert.Equal(t, "hvidløg", canonical)
	assert.NotEqual(t, "noget andet", lex.PrepTerms()[0])
}

func TestNew_DoesNotAliasInput(t *testing.T) {
	src := Tables{
		Corrections: map[string]string{"øg": "løg"},
		PrepTerms:   []string{"hakket"},
	}
	lex := New(src)

	src.Corrections["øg"] = "æg"
	src.PrepTerms[0] = "skåret"

	got, _ := lex.Correct("øg")
	assert.Equal(t, "løg", got)
	assert.Equal(t, []string{"hakket"}, lex.PrepTerms())
}

func indexOf(items []string, target string) int {
	for i, it := range items {
		if it == target {
			return i
		}
	}
	return -1
}
