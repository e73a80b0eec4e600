package grammar

import "github.com/dekarrin/ictiobus/builder"

// ElementKind distinguishes the variants of a pre-normalization lexical
// element. Only ElemSymbol may appear in a Rule's Body after Builder.Build runs;
// ElemRepeat is desugared into generated rules (see normalize.go), and a
// parameter mark is a flag on an element rather than a variant of its own
// (see Element.IsParam).
type ElementKind int

const (
	ElemSymbol ElementKind = iota
	ElemRepeat
)

// Element is one position of a pre-normalization rule body. Sym and Rep
// construct the two variants; Param wraps either to mark the position as a
// callback argument.
type Element struct {
	Kind ElementKind

	// Symbol is the referenced terminal or nonterminal name. Populated only
	// when Kind is ElemSymbol.
	Symbol string

	// Repeat holds the repetition spec. Populated only when Kind is
	// ElemRepeat.
	Repeat *RepeatSpec

	// IsParam marks this position as one the rule's callback receives. The
	// normalizer appends the position's post-normalization index to the
	// rule's ParamIndices for every element with IsParam set, in the order
	// they appear in the body (which is always increasing, satisfying the
	// Rule.ParamIndices invariant).
	IsParam bool
}

// RepeatSpec describes a high-level repetition operator: the spec calls
// this "a repetition operator with optional separator and optional empty
// acceptance." Element may itself be an ElemRepeat; the normalizer resolves
// nested repeats inside-out, so "zero or more (one or more a's separated by
// commas)" is expressible by nesting two Rep calls.
type RepeatSpec struct {
	Element     Element
	Separator   *Element
	AllowEmpty  bool
	ListBuilder builder.ListBuilder
}

// Sym builds a plain lexical element referencing the terminal or
// nonterminal declared under name.
func Sym(name string) Element {
	return Element{Kind: ElemSymbol, Symbol: name}
}

// Param marks el as a position whose reduced value the owning rule's
// callback receives.
func Param(el Element) Element {
	el.IsParam = true
	return el
}

// Rep builds a repetition element. sep may be nil for no separator. When
// allowEmpty is false, the position requires at least one occurrence of
// elem; when true, zero occurrences are accepted and produce an empty list.
func Rep(elem Element, sep *Element, allowEmpty bool, lb builder.ListBuilder) Element {
	return Element{
		Kind: ElemRepeat,
		Repeat: &RepeatSpec{
			Element:     elem,
			Separator:   sep,
			AllowEmpty:  allowEmpty,
			ListBuilder: lb,
		},
	}
}
