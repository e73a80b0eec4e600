// Package builder defines the contract between a compiled grammar and the
// application that supplies its semantic actions.
//
// ictiobus never constructs AST nodes itself; every reduction in the driver
// (see package runtime) invokes a Callback supplied at grammar-build time,
// and the value that Callback returns becomes the value attached to the
// newly-reduced stack frame. The grammar author owns the node types; this
// package only pins down the shape a callback and a resulting node must
// have so the driver can compute source spans without caring what's inside
// them.
package builder

// Node is the minimal shape a value produced by a Callback must have if
// Identity is to check its span against the reduction's. Values that don't
// implement Node are still legal callback results, and Identity passes them
// through without a span check. The driver's own span arithmetic uses the
// token offsets and spans it records on its stacks, not Node.
type Node interface {
	// Start returns the byte offset of the first byte covered by this node.
	Start() int

	// Stop returns the byte offset one past the last byte covered by this
	// node.
	Stop() int
}

// Callback is a semantic action bound to a rule at grammar-build time. It is
// invoked once per reduction of that rule, after the reduction's RHS frames
// have been popped off the parse stack.
//
// b is the builder instance supplied to the current parse (see
// runtime.Driver.Parse), opaque to ictiobus itself. A grammar author whose
// callbacks need per-parse state (a symbol table, an indentation counter,
// anything that must not leak between concurrent parses) type-asserts b to
// their own builder type; a callback with no such need simply ignores it.
// Passing a fresh b to every parse is what lets the same compiled Grammar
// and Table be shared safely across concurrent parses.
//
// start and stop are the byte-offset span covered by the reduction: start is
// the Start() of the first popped frame (or, for an epsilon reduction, the
// Stop() of the frame now on top of the stack), and stop is the Stop() of
// the last popped frame (or, for an epsilon reduction, the Start() of the
// token that triggered the reduction). args holds the values of the RHS
// positions selected by the rule's parameter marks, in left-to-right order.
//
// The value returned becomes the value of the new stack frame pushed for
// the reduction's LHS nonterminal.
type Callback func(b any, start, stop int, args []any) any

// Noop is the conventional zero-effort callback: it ignores its arguments
// and returns nil. It is the callback bound to the augmented start rule
// (_START -> S), and is a reasonable default for rules whose only purpose
// is to group alternatives with no payload of their own.
func Noop(b any, start, stop int, args []any) any {
	return nil
}

// Identity returns args[0] unchanged, after asserting, when it is a Node,
// that its span exactly matches (start, stop). It is meant for rules of the
// form A -> B where no new node should be synthesized, such as the
// allow-empty wrapper a Repeat element expands into (see the grammar
// package's normalizer).
//
// Identity panics if args does not have exactly one element, or if that
// element implements Node but reports a different span; this is an
// InternalInvariant violation, not a user input error, since it can only
// be triggered by a malformed grammar.
func Identity(b any, start, stop int, args []any) any {
	if len(args) != 1 {
		panic("builder.Identity: expected exactly one argument")
	}
	x := args[0]
	if n, ok := x.(Node); ok {
		if n.Start() != start || n.Stop() != stop {
			panic("builder.Identity: argument span does not match reduction span")
		}
	}
	return x
}
