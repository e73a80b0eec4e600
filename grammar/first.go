package grammar

// FirstSets holds the FIRST set of every symbol in a Grammar's combined
// symbol space, computed once by ComputeFirst and reused across LALR(1)
// lookahead propagation (dragon book algorithm 4.62/4.63's FIRST(βa)
// lookups) and the CLR(1) cross-check construction.
type FirstSets struct {
	g    *Grammar
	sets []*indexSet
}

// ComputeFirst runs the standard worklist fixed point for FIRST sets: a
// terminal's FIRST set is just itself; a nonterminal's FIRST set is the
// union, over its rules, of the FIRST sets of each body symbol up to (and,
// if every symbol so far is nullable, including) the first nonnullable
// one.
func ComputeFirst(g *Grammar) *FirstSets {
	fs := &FirstSets{g: g, sets: make([]*indexSet, g.NumSymbols())}
	numTerms := g.NumTerminals()
	for i := 0; i < numTerms; i++ {
		s := newIndexSet(numTerms)
		s.Add(i)
		fs.sets[i] = s
	}
	for i := numTerms; i < g.NumSymbols(); i++ {
		fs.sets[i] = newIndexSet(numTerms)
	}

	changed := true
	for changed {
		changed = false
		for _, r := range g.rules {
			head := fs.sets[r.Head]
			for _, s := range r.Body {
				for _, t := range fs.sets[s].Elements() {
					if head.Add(t) {
						changed = true
					}
				}
				if s < numTerms || !g.nonterminals[s-numTerms].Nullable {
					break
				}
			}
		}
	}
	return fs
}

// Of returns the FIRST set of a single symbol, in ascending terminal-index
// order.
func (fs *FirstSets) Of(symbol int) []int {
	return fs.sets[symbol].Elements()
}

// OfSequence computes FIRST of a symbol sequence: the union of FIRST(seq[0])
// and, for as long as every preceding symbol is nullable, FIRST of each
// following symbol in turn. The returned bool reports whether the entire
// sequence is nullable (every symbol in it is a nullable nonterminal, or
// the sequence is empty).
func (fs *FirstSets) OfSequence(seq []int) ([]int, bool) {
	numTerms := fs.g.NumTerminals()
	result := newIndexSet(numTerms)
	nullable := true
	for _, s := range seq {
		for _, t := range fs.sets[s].Elements() {
			result.Add(t)
		}
		if s < numTerms || !fs.g.nonterminals[s-numTerms].Nullable {
			nullable = false
			break
		}
	}
	return result.Elements(), nullable
}
