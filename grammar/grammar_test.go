package grammar

import (
	"testing"

	"github.com/dekarrin/ictiobus/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Builder_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		build     func(b *Builder)
		expectErr bool
	}{
		{
			name:      "empty grammar",
			build:     func(b *Builder) {},
			expectErr: true,
		},
		{
			name: "no rules in grammar",
			build: func(b *Builder) {
				b.Terminal("int", `[0-9]+`)
			},
			expectErr: true,
		},
		{
			name: "no terminals in grammar",
			build: func(b *Builder) {
				b.Rule("S", []Element{Sym("S")}, builder.Identity)
			},
			expectErr: true,
		},
		{
			name: "single rule grammar",
			build: func(b *Builder) {
				b.Terminal("int", `[0-9]+`)
				b.Rule("S", []Element{Sym("int")}, builder.Identity)
			},
			expectErr: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuilder()
			tc.build(b)
			err := b.Validate()
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// balancedParens grounds spec.md §8's "balanced parentheses" end-to-end
// scenario: S -> ( S ) S | ε, building a nested []any structure.
func balancedParens(t *testing.T) *Grammar {
	t.Helper()
	b := NewBuilder()
	b.Terminal("lparen", `\(`)
	b.Terminal("rparen", `\)`)
	b.Rule("S", []Element{
		Param(Sym("lparen")),
		Param(Sym("S")),
		Param(Sym("rparen")),
		Param(Sym("S")),
	}, func(bld any, start, stop int, args []any) any {
		return []any{"group", args[1], args[3]}
	})
	b.Rule("S", nil, func(bld any, start, stop int, args []any) any {
		return []any{}
	})
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func Test_Build_BalancedParens(t *testing.T) {
	g := balancedParens(t)
	assert.Equal(t, 3, g.NumTerminals()) // $, lparen, rparen
	assert.True(t, g.NonTerm(g.StartSymbol()).Nullable)

	_, err := BuildTable(g)
	assert.NoError(t, err, "balanced parens is LALR(1)")
}

func Test_Build_RepeatDesugarsToGeneratedRules(t *testing.T) {
	b := NewBuilder()
	b.Terminal("digit", `[0-9]`)
	b.Terminal("comma", `,`)
	sep := Sym("comma")
	b.Rule("List", []Element{
		Param(Rep(Sym("digit"), &sep, true, builder.SliceListBuilder{})),
	}, builder.Identity)

	g, err := b.Build()
	require.NoError(t, err)

	var generated int
	for _, nt := range g.Nonterminals() {
		if nt.Generated {
			generated++
		}
	}
	assert.Equal(t, 2, generated, "expected one -ne nonterminal and one nullable wrapper")

	_, err = BuildTable(g)
	assert.NoError(t, err)
}

func Test_Build_UndeclaredSymbol(t *testing.T) {
	b := NewBuilder()
	b.Terminal("a", "a")
	b.Rule("S", []Element{Sym("a"), Sym("Missing")}, builder.Identity)

	_, err := b.Build()
	assert.Error(t, err)
	var gerr *GrammarError
	assert.ErrorAs(t, err, &gerr)
}

func Test_ReduceReduceConflict_IsFatal(t *testing.T) {
	b := NewBuilder()
	b.Terminal("a", "a")
	b.Rule("S", []Element{Sym("X")}, builder.Identity)
	b.Rule("S", []Element{Sym("Y")}, builder.Identity)
	b.Rule("X", nil, builder.Noop)
	b.Rule("Y", nil, builder.Noop)

	g, err := b.Build()
	require.NoError(t, err)

	_, err = BuildTable(g)
	require.Error(t, err)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.ReduceReduce)
}

func Test_ShiftReduceConflict_StrictPromotesToError(t *testing.T) {
	// the classic dangling-else-shaped ambiguity: ifStmt is LALR(1)-conflicted
	// under a naive grammar, but the default policy resolves in favor of the
	// shift.
	build := func(strict bool) *Builder {
		b := NewBuilder()
		b.Terminal("if", "if")
		b.Terminal("then", "then")
		b.Terminal("else", "else")
		b.Terminal("other", "x")
		if strict {
			b.StrictConflicts(true)
		}
		b.SetStart("Stmt")
		b.Rule("Stmt", []Element{Sym("other")}, builder.Identity)
		b.Rule("Stmt", []Element{Sym("if"), Sym("then"), Sym("Stmt")}, builder.Identity)
		b.Rule("Stmt", []Element{Sym("if"), Sym("then"), Sym("Stmt"), Sym("else"), Sym("Stmt")}, builder.Identity)
		return b
	}

	lenient, err := build(false).Build()
	require.NoError(t, err)
	_, err = BuildTable(lenient)
	assert.NoError(t, err, "default policy resolves shift/reduce in favor of the shift")

	strict, err := build(true).Build()
	require.NoError(t, err)
	_, err = BuildTable(strict)
	require.Error(t, err)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.False(t, cerr.ReduceReduce)
}

func Test_Table_REZIBytes_IsDeterministic(t *testing.T) {
	g := balancedParens(t)

	t1, err := BuildTable(g)
	require.NoError(t, err)
	t2, err := BuildTable(g)
	require.NoError(t, err)

	b1, err := t1.REZIBytes()
	require.NoError(t, err)
	b2, err := t2.REZIBytes()
	require.NoError(t, err)

	assert.Equal(t, b1, b2, "building the same grammar twice must serialize identically")
}

func Test_Grammar_IsLL1_TrueForBalancedParens(t *testing.T) {
	g := balancedParens(t)
	assert.True(t, g.IsLL1())
}

func Test_Grammar_IsLL1_FalseForCommonPrefixGrammar(t *testing.T) {
	// S -> a | a a: both rules' FIRST sets are {a}, so they are not
	// disjoint and no LL(1) parser can choose between them on one token
	// of lookahead.
	b := NewBuilder()
	b.Terminal("a", "a")
	b.Rule("S", []Element{Sym("a")}, builder.Identity)
	b.Rule("S", []Element{Sym("a"), Sym("a")}, builder.Identity)
	g, err := b.Build()
	require.NoError(t, err)

	assert.False(t, g.IsLL1())
}

func Test_Builder_Extend_ReexportsUnchanged(t *testing.T) {
	parent := balancedParens(t)
	parentTable, err := BuildTable(parent)
	require.NoError(t, err)
	wantBytes, err := parentTable.REZIBytes()
	require.NoError(t, err)

	sub := NewBuilder().Extend(parent)
	child, err := sub.Build()
	require.NoError(t, err)
	childTable, err := BuildTable(child)
	require.NoError(t, err)
	gotBytes, err := childTable.REZIBytes()
	require.NoError(t, err)

	assert.Equal(t, wantBytes, gotBytes, "re-exporting a grammar unchanged must produce a byte-equal table")
}

func Test_Builder_Extend_PreservesGeneratedRules(t *testing.T) {
	b := NewBuilder()
	b.Terminal("digit", `[0-9]`)
	b.Terminal("comma", `,`)
	sep := Sym("comma")
	b.Rule("List", []Element{
		Param(Rep(Sym("digit"), &sep, true, builder.SliceListBuilder{})),
	}, builder.Identity)
	parent, err := b.Build()
	require.NoError(t, err)
	parentTable, err := BuildTable(parent)
	require.NoError(t, err)
	wantBytes, err := parentTable.REZIBytes()
	require.NoError(t, err)

	child, err := NewBuilder().Extend(parent).Build()
	require.NoError(t, err)

	var generated int
	for _, nt := range child.Nonterminals() {
		if nt.Generated {
			generated++
		}
	}
	assert.Zero(t, generated, "rules re-exported via Extend are plain BNF, not re-desugared repeats")

	childTable, err := BuildTable(child)
	require.NoError(t, err)
	gotBytes, err := childTable.REZIBytes()
	require.NoError(t, err)
	assert.Equal(t, wantBytes, gotBytes, "re-exported generated rules must still produce a byte-equal table")
}

func Test_CLR1StateCount_AtLeastLALRStateCount(t *testing.T) {
	g := balancedParens(t)
	table, err := BuildTable(g)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, CLR1StateCount(g), table.NumStates)
}
