// Package grammar implements the first three hard-engineering subsystems of
// ictiobus: the symbol model, the repetition-operator normalizer, and the
// LALR(1) analysis (FIRST/nullable, LR(0) closures, lookahead propagation,
// and action/goto table construction) built on top of it.
//
// A grammar author builds up declarations with Builder, then calls
// Builder.Build to normalize them into an immutable, analysis-ready
// Grammar. Grammar and everything derived from it (Table) are safe to share
// across goroutines once built; Builder is not.
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/ictiobus/builder"
	"github.com/dekarrin/rosed"
	"github.com/google/uuid"
)

// ruleDef is a pre-normalization production, as declared on a Builder.
type ruleDef struct {
	head     string
	body     []Element
	callback builder.Callback
}

type termDecl struct {
	name    string
	pattern string
}

// Builder accumulates a grammar's terminals, nonterminals, and rules in
// whatever order a grammar author declares them, addressed by name rather
// than by index. Build normalizes the accumulated declarations into an
// immutable Grammar.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	start string

	skipUnmatchedInput bool
	strictConflicts    bool

	termOrder []string
	terms     map[string]termDecl

	nontermOrder []string
	nonterms     map[string]bool

	ruleDefs []ruleDef
}

// NewBuilder returns an empty Builder. SkipUnmatchedInput defaults to true,
// matching the historical tokenizer behavior of silently skipping bytes that
// match no terminal pattern (spec.md §9's first Open Question).
func NewBuilder() *Builder {
	return &Builder{
		skipUnmatchedInput: true,
		terms:              map[string]termDecl{},
		nonterms:           map[string]bool{},
	}
}

// Terminal declares (or redeclares) a terminal with the given name and
// regex pattern. pattern must be non-empty; the end-of-input terminal is
// synthesized automatically and cannot be declared by name.
func (b *Builder) Terminal(name, pattern string) *Builder {
	if _, ok := b.terms[name]; !ok {
		b.termOrder = append(b.termOrder, name)
	}
	b.terms[name] = termDecl{name: name, pattern: pattern}
	return b
}

// Nonterminal explicitly declares a nonterminal with no rules of its own
// yet. Declaring a nonterminal this way is optional: any name used as a
// rule's head is implicitly declared.
func (b *Builder) Nonterminal(name string) *Builder {
	if !b.nonterms[name] {
		b.nonterms[name] = true
		b.nontermOrder = append(b.nontermOrder, name)
	}
	return b
}

// Rule appends a production headed by the nonterminal named head, with the
// given body and callback. cb must not be nil.
func (b *Builder) Rule(head string, body []Element, cb builder.Callback) *Builder {
	if !b.nonterms[head] {
		b.nonterms[head] = true
		b.nontermOrder = append(b.nontermOrder, head)
	}
	b.ruleDefs = append(b.ruleDefs, ruleDef{head: head, body: body, callback: cb})
	return b
}

// SetStart designates the grammar's start symbol. If never called, Build
// defaults the start symbol to the head of the first declared rule.
func (b *Builder) SetStart(name string) *Builder {
	b.start = name
	return b
}

// SkipUnmatchedInput controls whether the tokenizer silently skips bytes
// that match no terminal pattern (the default) or treats them as an error.
func (b *Builder) SkipUnmatchedInput(v bool) *Builder {
	b.skipUnmatchedInput = v
	return b
}

// StrictConflicts controls whether a shift/reduce conflict found during
// table construction is silently resolved in favor of the shift (the
// default) or promoted to a fatal ConflictError.
func (b *Builder) StrictConflicts(v bool) *Builder {
	b.strictConflicts = v
	return b
}

// Extend re-declares every terminal, nonterminal, and rule of an
// already-built Grammar onto the receiver, in their original order, and
// adopts g's start symbol if the receiver has none set yet, so
// that rebuilding reproduces byte-identical combined-space indices (and
// therefore a byte-identical compiled Table) when nothing else is added
// to the receiver. This is how a subgrammar re-exports a parent grammar's
// declarations unchanged (spec.md §8 scenario 5): build the parent once,
// then Extend a fresh Builder with it before adding the subgrammar's own
// terminals, nonterminals, and rules. Grounded on the Python original's
// GrammarMeta.__init__ (jizzy/grammar.py), which walks a subclass's base
// classes and merges their terminal and nonterminal declarations in
// before the subclass's own rules are processed.
//
// g's rule callbacks are reused as-is, not cloned; a callback that closes
// over state shared with g's own parses remains shared after Extend.
func (b *Builder) Extend(g *Grammar) *Builder {
	for _, t := range g.Terminals() {
		if t.IsEOF() {
			continue
		}
		b.Terminal(t.Name, t.Pattern)
	}

	for _, nt := range g.Nonterminals() {
		if nt.Index == g.AugmentedStart() {
			continue
		}
		b.Nonterminal(nt.Name)
	}

	for _, r := range g.Rules() {
		if r.Head == g.AugmentedStart() {
			continue
		}
		body := make([]Element, len(r.Body))
		for i, s := range r.Body {
			body[i] = Sym(g.nameOf(s))
		}
		for _, pi := range r.ParamIndices {
			body[pi] = Param(body[pi])
		}
		b.Rule(g.nameOf(r.Head), body, r.Callback)
	}

	if b.start == "" {
		b.SetStart(g.nameOf(g.StartSymbol()))
	}

	return b
}

// Validate checks the accumulated declarations for the structural problems
// that would make normalization meaningless: no terminals, no rules, or an
// undeclared start symbol. It does not run normalization and so cannot
// catch problems (such as an undeclared symbol reference inside a rule
// body) that only normalization's symbol resolution would find; those
// surface from Build instead.
func (b *Builder) Validate() error {
	if len(b.terms) == 0 {
		return grammarErrorf("grammar has no terminals")
	}
	if len(b.ruleDefs) == 0 {
		return grammarErrorf("grammar has no rules")
	}
	start := b.start
	if start == "" {
		start = b.ruleDefs[0].head
	}
	if !b.nonterms[start] {
		return grammarErrorf("start symbol %q is not the head of any rule", start)
	}
	return nil
}

// Grammar is an immutable, normalized grammar: every Repeat element has
// been desugared into generated BNF rules, every symbol has a stable
// index into the combined symbol space (terminals first, starting with the
// end-of-input terminal at index 0; then nonterminals, starting with the
// augmented start nonterminal _START), and every nonterminal's Nullable
// flag has been computed.
//
// Grammar is safe to share across goroutines; it is never mutated after
// Build returns it.
type Grammar struct {
	terminals    []Terminal
	nonterminals []Nonterminal
	rules        []Rule

	// start is the combined-space index of the user's declared start
	// symbol (not the augmented one).
	start int

	skipUnmatchedInput bool
	strictConflicts    bool
}

// NumTerminals returns the number of terminals, including the synthesized
// end-of-input terminal.
func (g *Grammar) NumTerminals() int { return len(g.terminals) }

// NumNonterminals returns the number of nonterminals, including the
// synthesized augmented start nonterminal.
func (g *Grammar) NumNonterminals() int { return len(g.nonterminals) }

// NumSymbols returns NumTerminals() + NumNonterminals(), the width of the
// combined symbol space every Rule.Head/Rule.Body index and every Table
// column lives in.
func (g *Grammar) NumSymbols() int { return len(g.terminals) + len(g.nonterminals) }

// IsTerminal reports whether idx, a combined-space index, names a terminal.
func (g *Grammar) IsTerminal(idx int) bool { return idx >= 0 && idx < len(g.terminals) }

// Term returns the terminal at combined-space index idx.
func (g *Grammar) Term(idx int) Terminal { return g.terminals[idx] }

// NonTerm returns the nonterminal at combined-space index idx.
func (g *Grammar) NonTerm(idx int) Nonterminal { return g.nonterminals[idx-len(g.terminals)] }

// Terminals returns every terminal, in index order.
func (g *Grammar) Terminals() []Terminal { return g.terminals }

// Nonterminals returns every nonterminal, in index order.
func (g *Grammar) Nonterminals() []Nonterminal { return g.nonterminals }

// Rules returns every rule, in index order. Rule 0 is always the augmented
// start rule.
func (g *Grammar) Rules() []Rule { return g.rules }

// Rule returns the rule at the given rule index (not a symbol index).
func (g *Grammar) Rule(idx int) Rule { return g.rules[idx] }

// NumRules returns the number of rules, including the augmented start rule.
func (g *Grammar) NumRules() int { return len(g.rules) }

// AugmentedStart returns the combined-space index of the synthesized
// augmented start nonterminal _START.
func (g *Grammar) AugmentedStart() int { return len(g.terminals) }

// StartSymbol returns the combined-space index of the grammar's declared
// start symbol (not the augmented one).
func (g *Grammar) StartSymbol() int { return g.start }

// EOF returns the combined-space index of the end-of-input terminal (always
// 0).
func (g *Grammar) EOF() int { return EOFIndex }

// SkipUnmatchedInput reports the tokenizer behavior selected at build time;
// see Builder.SkipUnmatchedInput.
func (g *Grammar) SkipUnmatchedInput() bool { return g.skipUnmatchedInput }

// StrictConflicts reports the conflict policy selected at build time; see
// Builder.StrictConflicts.
func (g *Grammar) StrictConflicts() bool { return g.strictConflicts }

func (g *Grammar) nameOf(idx int) string {
	if g.IsTerminal(idx) {
		return g.Term(idx).Name
	}
	return g.NonTerm(idx).Name
}

// String renders the grammar's rules, one line per nonterminal in the form
// "Head -> alt | alt", passed through rosed. Long lines are not wrapped.
func (g *Grammar) String() string {
	var lines []string
	for _, nt := range g.nonterminals {
		var alts []string
		for _, ri := range nt.Rules {
			r := g.rules[ri]
			if len(r.Body) == 0 {
				alts = append(alts, "ε")
				continue
			}
			var parts []string
			for _, s := range r.Body {
				parts = append(parts, g.nameOf(s))
			}
			alts = append(alts, strings.Join(parts, " "))
		}
		lines = append(lines, fmt.Sprintf("%s -> %s", nt.Name, strings.Join(alts, " | ")))
	}
	return rosed.Edit(strings.Join(lines, "\n")).String()
}

// generatedNameTag returns a short collision-breaking suffix. It is only
// reached when a deterministically-derived generated nonterminal name
// (e.g. "digit-list-ne") collides with a name the grammar author already
// declared; see normalize.go's uniqueName.
func generatedNameTag() string {
	id := uuid.New().String()
	return id[:8]
}

// sortedTerminalNames returns names in a stable, alphabetized order so that
// output built from it doesn't depend on map iteration order. Nothing in
// the module calls it at present.
func sortedTerminalNames(names map[string]bool) []string {
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
