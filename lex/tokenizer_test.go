package lex

import (
	"testing"

	"github.com/dekarrin/ictiobus/builder"
	"github.com/dekarrin/ictiobus/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLikeGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	b := grammar.NewBuilder()
	b.Terminal("number", `-?[0-9]+(\.[0-9]+)?`)
	b.Terminal("string", `"[^"]*"`)
	b.Terminal("true", `true`)
	b.Terminal("false", `false`)
	b.Terminal("null", `null`)
	b.Rule("Value", []grammar.Element{grammar.Sym("number")}, builder.Identity)
	b.Rule("Value", []grammar.Element{grammar.Sym("string")}, builder.Identity)
	b.Rule("Value", []grammar.Element{grammar.Sym("true")}, builder.Identity)
	b.Rule("Value", []grammar.Element{grammar.Sym("false")}, builder.Identity)
	b.Rule("Value", []grammar.Element{grammar.Sym("null")}, builder.Identity)
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func Test_Tokenize_MatchesDeclaredTerminal(t *testing.T) {
	g := jsonLikeGrammar(t)
	tz, err := New(g)
	require.NoError(t, err)

	toks, err := tz.Tokenize(`true`)
	require.NoError(t, err)
	require.Len(t, toks, 2) // "true" then EOF
	assert.Equal(t, "true", toks[0].ClassName)
	assert.Equal(t, "true", toks[0].Lexeme)
	assert.Equal(t, 0, toks[0].Start)
	assert.Equal(t, 4, toks[0].Stop)
	assert.Equal(t, grammar.EOFName, toks[1].ClassName)
}

// Test_Tokenize_DeclarationOrderBreaksTies proves the tokenizer picks the
// first terminal declared that can match at a position, not the one
// matching the most bytes: both branches below match all four bytes of
// "true", so only declaration order can be deciding which one wins.
func Test_Tokenize_DeclarationOrderBreaksTies(t *testing.T) {
	keywordFirst := grammar.NewBuilder()
	keywordFirst.Terminal("true", "true")
	keywordFirst.Terminal("ident", `[a-z]+`)
	keywordFirst.Rule("S", []grammar.Element{grammar.Sym("true")}, builder.Identity)
	g1, err := keywordFirst.Build()
	require.NoError(t, err)
	tz1, err := New(g1)
	require.NoError(t, err)
	toks1, err := tz1.Tokenize("true")
	require.NoError(t, err)
	assert.Equal(t, "true", toks1[0].ClassName, "the keyword, declared first, should win")

	identFirst := grammar.NewBuilder()
	identFirst.Terminal("ident", `[a-z]+`)
	identFirst.Terminal("true", "true")
	identFirst.Rule("S", []grammar.Element{grammar.Sym("ident")}, builder.Identity)
	g2, err := identFirst.Build()
	require.NoError(t, err)
	tz2, err := New(g2)
	require.NoError(t, err)
	toks2, err := tz2.Tokenize("true")
	require.NoError(t, err)
	assert.Equal(t, "ident", toks2[0].ClassName, "the broader pattern, declared first, should win even though both match the same four bytes")
}

func Test_Tokenize_SkipsUnmatchedWhitespaceByDefault(t *testing.T) {
	g := jsonLikeGrammar(t)
	tz, err := New(g)
	require.NoError(t, err)

	toks, err := tz.Tokenize("  42  ")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, "number", toks[0].ClassName)
	assert.Equal(t, "42", toks[0].Lexeme)
}

func Test_Tokenize_StrictModeErrorsOnUnmatchedInput(t *testing.T) {
	b := grammar.NewBuilder()
	b.Terminal("a", "a")
	b.Rule("S", []grammar.Element{grammar.Sym("a")}, builder.Identity)
	b.SkipUnmatchedInput(false)
	g, err := b.Build()
	require.NoError(t, err)

	tz, err := New(g)
	require.NoError(t, err)

	_, err = tz.Tokenize("ab")
	require.Error(t, err)
	var uerr *UnmatchedInputError
	require.ErrorAs(t, err, &uerr)
}

func Test_Tokenize_TracksLineAndColumn(t *testing.T) {
	g := jsonLikeGrammar(t)
	tz, err := New(g)
	require.NoError(t, err)

	toks, err := tz.Tokenize("true\nfalse")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 1, toks[1].Col)
}
