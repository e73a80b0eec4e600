package grammar

// IsLL1 reports whether the grammar satisfies the LL(1) pairwise-
// disjointness condition (purple dragon book, the same test the teacher's
// internal/tunascript.Grammar.IsLL1 runs, adapted here to this package's
// combined-index symbol space instead of string-keyed sets): for every
// nonterminal A with two distinct rules α and β, FIRST(α) and FIRST(β) must
// be disjoint, and if either is nullable, FIRST of the other must also be
// disjoint from FOLLOW(A).
//
// This is informational only; ictiobus's own table construction and
// driver are LALR(1), not LL(1), and do not require this property. It
// exists for grammar authors who want to know whether their grammar would
// also admit a predictive top-down parser.
func (g *Grammar) IsLL1() bool {
	fs := ComputeFirst(g)
	fo := ComputeFollow(g, fs)

	for _, nt := range g.nonterminals {
		rules := nt.Rules
		followA := fo.Of(nt.Index)

		for i := 0; i < len(rules); i++ {
			for j := i + 1; j < len(rules); j++ {
				firstA, nullableA := fs.OfSequence(g.rules[rules[i]].Body)
				firstB, nullableB := fs.OfSequence(g.rules[rules[j]].Body)

				if !disjoint(firstA, firstB) {
					return false
				}
				if nullableB && !disjoint(firstA, followA) {
					return false
				}
				if nullableA && !disjoint(firstB, followA) {
					return false
				}
			}
		}
	}
	return true
}

// disjoint reports whether two ascending-sorted index slices share no
// element.
func disjoint(a, b []int) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			return false
		}
	}
	return true
}
