package runtime

import (
	"testing"

	"github.com/dekarrin/ictiobus/grammar"
	"github.com/dekarrin/ictiobus/lex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildBalancedParens(t *testing.T) (*grammar.Grammar, *grammar.Table) {
	t.Helper()
	b := grammar.NewBuilder()
	b.Terminal("lparen", `\(`)
	b.Terminal("rparen", `\)`)
	b.Rule("S", []grammar.Element{
		grammar.Param(grammar.Sym("lparen")),
		grammar.Param(grammar.Sym("S")),
		grammar.Param(grammar.Sym("rparen")),
		grammar.Param(grammar.Sym("S")),
	}, func(bld any, start, stop int, args []any) any {
		return max(1+args[1].(int), args[3].(int))
	})
	b.Rule("S", nil, func(bld any, start, stop int, args []any) any {
		return 0
	})
	g, err := b.Build()
	require.NoError(t, err)
	table, err := grammar.BuildTable(g)
	require.NoError(t, err)
	return g, table
}

func Test_Driver_Parse_CountsNestingDepth(t *testing.T) {
	g, table := buildBalancedParens(t)
	tz, err := lex.New(g)
	require.NoError(t, err)

	tokens, err := tz.Tokenize("()(())")
	require.NoError(t, err)

	d := NewDriver(table)
	value, err := d.Parse(tokens, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, value)
}

func Test_Driver_Parse_ReportsSyntaxErrorWithExpectedTokens(t *testing.T) {
	g, table := buildBalancedParens(t)
	tz, err := lex.New(g)
	require.NoError(t, err)

	tokens, err := tz.Tokenize("(")
	require.NoError(t, err)

	d := NewDriver(table)
	_, err = d.Parse(tokens, nil)
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "expected")
	assert.Equal(t, "end of input", perr.TokenType)
	assert.NotEmpty(t, perr.Expected)
}

// indentTracker is a per-parse builder carrying mutable state across
// callbacks, the Go analogue of the Python original's engine.py
// indent/unindent methods on a fresh builder instance per parse.
type indentTracker struct {
	depth    int
	maxDepth int
}

func Test_Driver_Parse_ThreadsBuilderInstanceThroughCallbacks(t *testing.T) {
	b := grammar.NewBuilder()
	b.Terminal("lparen", `\(`)
	b.Terminal("rparen", `\)`)
	b.Rule("S", []grammar.Element{
		grammar.Sym("lparen"),
		grammar.Param(grammar.Sym("S")),
		grammar.Sym("rparen"),
		grammar.Param(grammar.Sym("S")),
	}, func(bld any, start, stop int, args []any) any {
		it := bld.(*indentTracker)
		it.depth = max(1+args[0].(int), args[1].(int))
		if it.depth > it.maxDepth {
			it.maxDepth = it.depth
		}
		return it.depth
	})
	b.Rule("S", nil, func(bld any, start, stop int, args []any) any {
		return 0
	})
	g, err := b.Build()
	require.NoError(t, err)
	table, err := grammar.BuildTable(g)
	require.NoError(t, err)
	tz, err := lex.New(g)
	require.NoError(t, err)

	d := NewDriver(table)

	tokens, err := tz.Tokenize("(((())))")
	require.NoError(t, err)
	first := &indentTracker{}
	_, err = d.Parse(tokens, first)
	require.NoError(t, err)
	assert.Equal(t, 4, first.maxDepth)

	tokens, err = tz.Tokenize("()")
	require.NoError(t, err)
	second := &indentTracker{}
	_, err = d.Parse(tokens, second)
	require.NoError(t, err)
	assert.Equal(t, 1, second.maxDepth, "a fresh builder per parse must not see the previous parse's depth")
}

func Test_Driver_OnStep_ReportsEveryShiftAndReduce(t *testing.T) {
	g, table := buildBalancedParens(t)
	tz, err := lex.New(g)
	require.NoError(t, err)
	tokens, err := tz.Tokenize("()")
	require.NoError(t, err)

	var shifts, reduces, accepts int
	d := NewDriver(table)
	d.OnStep(func(e Event) {
		switch e.Kind {
		case EventShift:
			shifts++
		case EventReduce:
			reduces++
		case EventAccept:
			accepts++
		}
	})

	_, err = d.Parse(tokens, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, shifts)
	assert.Equal(t, 1, accepts)
	assert.True(t, reduces >= 2)
}
