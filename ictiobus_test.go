package ictiobus

import (
	"testing"

	"github.com/dekarrin/ictiobus/builder"
	"github.com/dekarrin/ictiobus/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonFrontend grounds spec.md §8's JSON scenarios: a strict empty object,
// a lenient set of scalar values, and an array built via the repetition
// operator with a comma separator.
func jsonFrontend(t *testing.T) *Frontend[any] {
	t.Helper()
	b := NewGrammar()
	b.Terminal("lbrace", `\{`)
	b.Terminal("rbrace", `\}`)
	b.Terminal("lbracket", `\[`)
	b.Terminal("rbracket", `\]`)
	b.Terminal("comma", `,`)
	b.Terminal("number", `-?[0-9]+(\.[0-9]+)?`)
	b.Terminal("string", `"[^"]*"`)
	b.Terminal("true", `true`)
	b.Terminal("false", `false`)
	b.Terminal("null", `null`)

	b.SetStart("Value")

	sep := grammar.Sym("comma")
	b.Rule("Value", []grammar.Element{grammar.Param(grammar.Sym("Object"))}, builder.Identity)
	b.Rule("Value", []grammar.Element{grammar.Param(grammar.Sym("Array"))}, builder.Identity)
	b.Rule("Value", []grammar.Element{grammar.Param(grammar.Sym("number"))}, builder.Identity)
	b.Rule("Value", []grammar.Element{grammar.Param(grammar.Sym("string"))}, builder.Identity)
	b.Rule("Value", []grammar.Element{grammar.Param(grammar.Sym("true"))}, builder.Identity)
	b.Rule("Value", []grammar.Element{grammar.Param(grammar.Sym("false"))}, builder.Identity)
	b.Rule("Value", []grammar.Element{grammar.Param(grammar.Sym("null"))}, builder.Identity)

	// strict: only the empty object is accepted.
	b.Rule("Object", []grammar.Element{grammar.Sym("lbrace"), grammar.Sym("rbrace")},
		func(bld any, start, stop int, args []any) any { return map[string]any{} })

	b.Rule("Array", []grammar.Element{
		grammar.Sym("lbracket"),
		grammar.Param(grammar.Rep(grammar.Sym("Value"), &sep, true, builder.SliceListBuilder{})),
		grammar.Sym("rbracket"),
	}, func(bld any, start, stop int, args []any) any {
		return args[0].(builder.SliceList).Items
	})

	fe, err := NewFrontend[any](b)
	require.NoError(t, err)
	return fe
}

func Test_JSON_StrictEmptyObject(t *testing.T) {
	fe := jsonFrontend(t)
	v, err := fe.AnalyzeString(`{}`, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, v)
}

func Test_JSON_StrictEmptyObject_RejectsNonEmpty(t *testing.T) {
	fe := jsonFrontend(t)
	_, err := fe.AnalyzeString(`{"a": 1}`, nil)
	assert.Error(t, err, "the grammar only accepts the empty object literal")
}

func Test_JSON_LenientValues(t *testing.T) {
	fe := jsonFrontend(t)

	for _, in := range []string{`42`, `-3.5`, `"hello"`, `true`, `false`, `null`} {
		v, err := fe.AnalyzeString(in, nil)
		require.NoError(t, err, "input %q", in)
		assert.NotNil(t, v)
	}
}

func Test_JSON_ArrayViaRepetitionOperator(t *testing.T) {
	fe := jsonFrontend(t)

	v, err := fe.AnalyzeString(`[1, 2, 3]`, nil)
	require.NoError(t, err)
	items, ok := v.([]any)
	require.True(t, ok)
	assert.Len(t, items, 3)
}

func Test_JSON_EmptyArrayViaRepetitionOperator(t *testing.T) {
	fe := jsonFrontend(t)

	v, err := fe.AnalyzeString(`[]`, nil)
	require.NoError(t, err)
	items, ok := v.([]any)
	require.True(t, ok)
	assert.Len(t, items, 0)
}

func Test_ErrorReporting_UnexpectedToken(t *testing.T) {
	fe := jsonFrontend(t)

	_, err := fe.AnalyzeString(`[1, , 3]`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
}

func Test_Frontend_IsDeterministicAcrossBuilds(t *testing.T) {
	fe1 := jsonFrontend(t)
	fe2 := jsonFrontend(t)

	b1, err := fe1.Table.REZIBytes()
	require.NoError(t, err)
	b2, err := fe2.Table.REZIBytes()
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}
