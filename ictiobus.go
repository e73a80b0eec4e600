// Package ictiobus is a parser-generator and runtime library for
// context-free grammars: declare terminals, nonterminals, and rules
// (including a repetition operator that desugars into plain BNF), compile
// them into an LALR(1) action/goto table, and drive a tokenizer and a
// shift/reduce parser over input text to produce a value built up by the
// callbacks bound to each rule.
//
// https://jsmachines.sourceforge.net/machines/lalr1.html is a good tool
// for sanity-checking a grammar's LALR(1)-ness by hand while developing
// one against this package.
package ictiobus

import (
	"fmt"
	"io"
	"strings"

	"github.com/dekarrin/ictiobus/grammar"
	"github.com/dekarrin/ictiobus/lex"
	"github.com/dekarrin/ictiobus/runtime"
)

// NewGrammar returns an empty grammar.Builder for declaring terminals,
// nonterminals, and rules on.
func NewGrammar() *grammar.Builder {
	return grammar.NewBuilder()
}

// Frontend is a complete input-to-value compiler front end: a normalized
// grammar, its compiled LALR(1) table, a tokenizer built from the
// grammar's terminal patterns, and a shift/reduce driver that runs the
// callbacks bound to each rule. E is the Go type the start rule's
// callback is expected to produce.
//
// A Frontend is built once and reused across many Analyze/AnalyzeString
// calls; it holds no per-parse state.
type Frontend[E any] struct {
	Grammar *grammar.Grammar
	Table   *grammar.Table

	tz     *lex.Tokenizer
	driver *runtime.Driver
}

// NewFrontend normalizes b's declarations, builds the LALR(1) table, and
// compiles the grammar's terminal patterns into a tokenizer.
//
// It returns a *grammar.GrammarError if normalization fails (an
// undeclared symbol reference, a missing start symbol, or an
// uncompilable terminal pattern), or a *grammar.ConflictError if the
// grammar is not LALR(1) — or, when b was built with StrictConflicts,
// contains any shift/reduce conflict at all.
func NewFrontend[E any](b *grammar.Builder) (*Frontend[E], error) {
	g, err := b.Build()
	if err != nil {
		return nil, err
	}
	table, err := grammar.BuildTable(g)
	if err != nil {
		return nil, err
	}
	tz, err := lex.New(g)
	if err != nil {
		return nil, err
	}
	return &Frontend[E]{
		Grammar: g,
		Table:   table,
		tz:      tz,
		driver:  runtime.NewDriver(table),
	}, nil
}

// OnStep registers a listener invoked once per shift, reduce, accept, or
// error step of every subsequent Analyze or AnalyzeString call. Passing
// nil disables tracing.
func (fe *Frontend[E]) OnStep(fn func(runtime.Event)) {
	fe.driver.OnStep(fn)
}

// AnalyzeString is Analyze over a string, for convenience. b is the
// builder instance passed through to every rule callback this parse
// invokes (see builder.Callback); pass nil when no callback needs
// per-parse state.
func (fe *Frontend[E]) AnalyzeString(s string, b any) (ir E, err error) {
	return fe.Analyze(strings.NewReader(s), b)
}

// Analyze reads all of r, tokenizes it against the frontend's grammar,
// and parses the resulting token stream, returning the value the start
// rule's callback (by way of every reduction beneath it) produced.
//
// b is the builder instance for this parse only; a Frontend holds no
// builder state of its own; concurrent calls to Analyze/AnalyzeString on
// the same Frontend are safe as long as each is given its own b (spec.md
// §5: "each parse owns its own stack and builder instance").
//
// It returns a *lex.UnmatchedInputError if tokenization hits a run of
// input no terminal matches (only possible when the grammar was built
// with SkipUnmatchedInput(false)), or a *runtime.ParseError if parsing
// does.
func (fe *Frontend[E]) Analyze(r io.Reader, b any) (ir E, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ir, fmt.Errorf("ictiobus: read input: %w", err)
	}

	tokens, err := fe.tz.Tokenize(string(data))
	if err != nil {
		return ir, err
	}

	value, err := fe.driver.Parse(tokens, b)
	if err != nil {
		return ir, err
	}

	result, ok := value.(E)
	if !ok {
		return ir, fmt.Errorf("ictiobus: start rule produced %T, not %T", value, ir)
	}
	return result, nil
}
