package grammar

// FollowSets holds the FOLLOW set of every nonterminal in a Grammar: the
// set of terminals that can appear immediately after that nonterminal in
// some derivation from the augmented start symbol. Used by IsLL1's
// pairwise-disjointness test, the same role it plays in the purple dragon
// book's LL(1) table construction (algorithm 4.21).
type FollowSets struct {
	g    *Grammar
	sets []*indexSet
}

// ComputeFollow runs the standard fixed point: FOLLOW(_START) is seeded
// with EOF; for every rule A -> αBβ, FIRST(β) is added to FOLLOW(B), and if
// β is nullable (including the case where β is empty), FOLLOW(A) is added
// to FOLLOW(B) too. fs must already be the grammar's FIRST sets.
func ComputeFollow(g *Grammar, fs *FirstSets) *FollowSets {
	numTerms := g.NumTerminals()
	follow := &FollowSets{g: g, sets: make([]*indexSet, g.NumNonterminals())}
	for i := range follow.sets {
		follow.sets[i] = newIndexSet(numTerms)
	}

	start := follow.sets[g.AugmentedStart()-numTerms]
	start.Add(g.EOF())

	changed := true
	for changed {
		changed = false
		for _, r := range g.rules {
			for i, b := range r.Body {
				if b < numTerms {
					continue
				}
				beta := r.Body[i+1:]
				firstBeta, nullable := fs.OfSequence(beta)

				bFollow := follow.sets[b-numTerms]
				for _, t := range firstBeta {
					if bFollow.Add(t) {
						changed = true
					}
				}
				if nullable {
					for _, t := range follow.sets[r.Head-numTerms].Elements() {
						if bFollow.Add(t) {
							changed = true
						}
					}
				}
			}
		}
	}
	return follow
}

// Of returns the FOLLOW set of a nonterminal, given as a combined-space
// index, in ascending terminal-index order.
func (fo *FollowSets) Of(nonterminal int) []int {
	return fo.sets[nonterminal-fo.g.NumTerminals()].Elements()
}
