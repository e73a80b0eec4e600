package grammar

import "github.com/dekarrin/ictiobus/builder"

// normalizer holds the state accumulated while desugaring a Builder's
// Repeat elements into generated BNF rules (spec.md §4.C). Nested repeats
// are resolved inside-out: normalizeElement on the outer Repeat first
// normalizes its inner Element (which may itself be a Repeat), then
// allocates its own generated nonterminal names from the already-expanded
// inner name.
type normalizer struct {
	builder *Builder

	nontermOrder []string
	nontermSet   map[string]bool
	generatedSet map[string]bool

	generated []genRule
}

// genRule is a rule synthesized by repeat desugaring, addressed by name
// like a Builder.ruleDef rather than by index; it is resolved to indices
// alongside the author's own rules once every name is known.
type genRule struct {
	head     string
	body     []string
	callback builder.Callback
	params   []int
}

func newNormalizer(b *Builder) *normalizer {
	n := &normalizer{
		builder:      b,
		nontermSet:   map[string]bool{},
		generatedSet: map[string]bool{},
	}
	for _, nm := range b.nontermOrder {
		n.addNonterminal(nm)
	}
	return n
}

func (n *normalizer) addNonterminal(name string) {
	if !n.nontermSet[name] {
		n.nontermSet[name] = true
		n.nontermOrder = append(n.nontermOrder, name)
	}
}

func (n *normalizer) nameTaken(name string) bool {
	if _, ok := n.builder.terms[name]; ok {
		return true
	}
	return n.nontermSet[name]
}

// uniqueName returns base if it's free, otherwise base suffixed with a
// short generated tag until it is. A collision only arises when a grammar
// author's own declared name happens to match the deterministic scheme a
// generated list nonterminal would otherwise get.
func (n *normalizer) uniqueName(base string) string {
	candidate := base
	for n.nameTaken(candidate) {
		candidate = base + "-" + generatedNameTag()
	}
	return candidate
}

// normalizeBody resolves every element of a rule body to the name of the
// single symbol it normalizes to (a Repeat always collapses to exactly one
// generated or pre-existing nonterminal name), and collects the positions
// marked with Param into params. Because each element always produces
// exactly one output symbol, a body position's index is unchanged by
// normalization, so params is naturally in increasing order.
func (n *normalizer) normalizeBody(body []Element) (names []string, params []int, err error) {
	names = make([]string, len(body))
	for i, el := range body {
		name, err := n.normalizeElement(el)
		if err != nil {
			return nil, nil, err
		}
		names[i] = name
		if el.IsParam {
			params = append(params, i)
		}
	}
	return names, params, nil
}

func (n *normalizer) normalizeElement(el Element) (string, error) {
	switch el.Kind {
	case ElemSymbol:
		if el.Symbol == "" {
			return "", grammarErrorf("rule body has an element with no symbol name")
		}
		return el.Symbol, nil
	case ElemRepeat:
		return n.desugarRepeat(el.Repeat)
	default:
		return "", grammarErrorf("rule body has an element of unknown kind")
	}
}

// desugarRepeat implements spec.md §4.C's four generated-rule shapes for a
// single Repeat element:
//
//	L_ne -> elem            { lb.MakeList(start, stop, elem) }
//	L_ne -> L_ne [sep] elem { lb.ExpandList(start, stop, list, elem) }
//	L    -> L_ne            { builder.Identity }     (only if AllowEmpty)
//	L    -> ε               { lb.MakeList(start, stop) } (only if AllowEmpty)
//
// and returns the name the Repeat position should be replaced with: L if
// AllowEmpty, L_ne otherwise.
func (n *normalizer) desugarRepeat(spec *RepeatSpec) (string, error) {
	if spec.ListBuilder == nil {
		return "", grammarErrorf("repeat element has no list builder")
	}

	elemName, err := n.normalizeElement(spec.Element)
	if err != nil {
		return "", err
	}

	var sepName string
	if spec.Separator != nil {
		sepName, err = n.normalizeElement(*spec.Separator)
		if err != nil {
			return "", err
		}
	}

	prefix := elemName + "-list"
	if sepName != "" {
		prefix += "-sep-" + sepName
	}

	neName := n.uniqueName(prefix + "-ne")
	n.addNonterminal(neName)
	n.generatedSet[neName] = true

	makeList := func(b any, start, stop int, args []any) any {
		return spec.ListBuilder.MakeList(start, stop, args...)
	}
	expandList := func(b any, start, stop int, args []any) any {
		list := args[0]
		next := args[len(args)-1]
		return spec.ListBuilder.ExpandList(start, stop, list, next)
	}

	n.generated = append(n.generated, genRule{
		head:     neName,
		body:     []string{elemName},
		callback: makeList,
		params:   []int{0},
	})

	var expandBody []string
	if sepName != "" {
		expandBody = []string{neName, sepName, elemName}
	} else {
		expandBody = []string{neName, elemName}
	}
	n.generated = append(n.generated, genRule{
		head:     neName,
		body:     expandBody,
		callback: expandList,
		params:   []int{0, len(expandBody) - 1},
	})

	if !spec.AllowEmpty {
		return neName, nil
	}

	listName := n.uniqueName(prefix)
	n.addNonterminal(listName)
	n.generatedSet[listName] = true

	n.generated = append(n.generated, genRule{
		head:     listName,
		body:     []string{neName},
		callback: builder.Identity,
		params:   []int{0},
	})
	n.generated = append(n.generated, genRule{
		head:     listName,
		body:     nil,
		callback: makeList,
		params:   nil,
	})

	return listName, nil
}

// expandedRule is a ruleDef or genRule after its element bodies have been
// resolved to symbol names but before names are resolved to combined-space
// indices.
type expandedRule struct {
	head     string
	body     []string
	callback builder.Callback
	params   []int
}

// Build normalizes the accumulated declarations into an immutable Grammar:
// every Repeat is desugared, every symbol is assigned a stable combined-
// space index, the augmented start rule is synthesized, and every
// nonterminal's Nullable flag is computed.
func (b *Builder) Build() (*Grammar, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	n := newNormalizer(b)

	expanded := make([]expandedRule, 0, len(b.ruleDefs))
	for _, rd := range b.ruleDefs {
		body, params, err := n.normalizeBody(rd.body)
		if err != nil {
			return nil, err
		}
		expanded = append(expanded, expandedRule{head: rd.head, body: body, callback: rd.callback, params: params})
	}
	for _, gr := range n.generated {
		expanded = append(expanded, expandedRule{head: gr.head, body: gr.body, callback: gr.callback, params: gr.params})
	}

	start := b.start
	if start == "" {
		start = b.ruleDefs[0].head
	}

	terminals := make([]Terminal, 0, len(b.termOrder)+1)
	terminals = append(terminals, Terminal{Index: EOFIndex, Name: EOFName})
	termIndex := map[string]int{EOFName: EOFIndex}
	for _, nm := range b.termOrder {
		td := b.terms[nm]
		idx := len(terminals)
		terminals = append(terminals, Terminal{Index: idx, Name: nm, Pattern: td.pattern})
		termIndex[nm] = idx
	}

	nontermIndex := map[string]int{}
	nonterminals := make([]Nonterminal, 0, len(n.nontermOrder)+1)
	augIdx := len(terminals)
	nonterminals = append(nonterminals, Nonterminal{Index: augIdx, Name: AugmentedStartName})
	nontermIndex[AugmentedStartName] = augIdx
	for _, nm := range n.nontermOrder {
		idx := len(terminals) + len(nonterminals)
		nonterminals = append(nonterminals, Nonterminal{Index: idx, Name: nm, Generated: n.generatedSet[nm]})
		nontermIndex[nm] = idx
	}

	resolve := func(name string) (int, error) {
		if idx, ok := termIndex[name]; ok {
			return idx, nil
		}
		if idx, ok := nontermIndex[name]; ok {
			return idx, nil
		}
		return 0, grammarErrorf("undeclared symbol %q", name)
	}

	startIdx, err := resolve(start)
	if err != nil {
		return nil, err
	}

	rules := make([]Rule, 0, len(expanded)+1)
	rules = append(rules, Rule{Index: 0, Head: augIdx, Body: []int{startIdx}, Callback: builder.Noop})
	nonterminals[0].Rules = []int{0}

	for _, er := range expanded {
		headIdx, err := resolve(er.head)
		if err != nil {
			return nil, err
		}
		bodyIdx := make([]int, len(er.body))
		for i, s := range er.body {
			si, err := resolve(s)
			if err != nil {
				return nil, err
			}
			bodyIdx[i] = si
		}
		ruleIdx := len(rules)
		rules = append(rules, Rule{
			Index:        ruleIdx,
			Head:         headIdx,
			Body:         bodyIdx,
			Callback:     er.callback,
			ParamIndices: er.params,
		})
		ntSlot := headIdx - len(terminals)
		nonterminals[ntSlot].Rules = append(nonterminals[ntSlot].Rules, ruleIdx)
	}

	g := &Grammar{
		terminals:          terminals,
		nonterminals:        nonterminals,
		rules:              rules,
		start:              startIdx,
		skipUnmatchedInput: b.skipUnmatchedInput,
		strictConflicts:    b.strictConflicts,
	}
	computeNullable(g)
	return g, nil
}

// computeNullable runs the standard worklist fixed point: a nonterminal is
// nullable if it has a rule whose body is empty, or whose every symbol is a
// nullable nonterminal. Terminals are never nullable.
func computeNullable(g *Grammar) {
	numTerms := len(g.terminals)
	changed := true
	for changed {
		changed = false
		for i := range g.nonterminals {
			nt := &g.nonterminals[i]
			if nt.Nullable {
				continue
			}
			for _, ri := range nt.Rules {
				r := g.rules[ri]
				all := true
				for _, s := range r.Body {
					if s < numTerms {
						all = false
						break
					}
					if !g.nonterminals[s-numTerms].Nullable {
						all = false
						break
					}
				}
				if all {
					nt.Nullable = true
					changed = true
					break
				}
			}
		}
	}
}
