package grammar

import (
	"strconv"
	"strings"

	"github.com/dekarrin/ictiobus/builder"
)

// Rule is a production, after normalization: a stable index, the combined-
// space index of its left-hand nonterminal, its right-hand sequence of
// symbols (also combined-space indices), the semantic callback bound to it,
// and the RHS positions that callback receives as arguments.
//
// Rule 0 is always the augmented rule _START -> S, where S is the grammar's
// start symbol; its callback is builder.Noop, and it is never actually
// invoked, since the driver's accept action (the reduction of rule 0)
// returns the value already on top of the stack instead of reducing through
// the normal machinery (spec.md §4.H step 4).
type Rule struct {
	Index        int
	Head         int
	Body         []int
	Callback     builder.Callback
	ParamIndices []int
}

// Arity returns the number of RHS symbols, i.e. len(r.Body).
func (r Rule) Arity() int { return len(r.Body) }

// String renders the rule using the grammar's symbol names, for error
// messages and conflict reports. g is consulted for display names; if g is
// nil, the raw indices are rendered instead.
func (r Rule) String(g *Grammar) string {
	var sb strings.Builder
	if g != nil {
		sb.WriteString(g.nameOf(r.Head))
	} else {
		sb.WriteString(strconv.Itoa(r.Head))
	}
	sb.WriteString(" ->")
	if len(r.Body) == 0 {
		sb.WriteString(" ε")
	}
	for _, s := range r.Body {
		sb.WriteByte(' ')
		if g != nil {
			sb.WriteString(g.nameOf(s))
		} else {
			sb.WriteString(strconv.Itoa(s))
		}
	}
	return sb.String()
}
