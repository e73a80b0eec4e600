package grammar

// dummyLookahead is the "#" placeholder of dragon book algorithm 4.62,
// used only while discovering spontaneous lookaheads and propagation
// edges between kernel items of adjacent states. It is never a valid
// terminal index (those start at EOFIndex, 0, and go up); -1 keeps it
// unambiguously out of that range.
const dummyLookahead = -1

// lrItem is an LR(1) item: an Item core plus a single lookahead terminal
// (or dummyLookahead). Kernel items generally carry a whole set of
// lookaheads, represented elsewhere as map[Item]*indexSet; lrItem is used
// for the single-lookahead closures this file computes one at a time and
// for the canonical LR(1) items of clr1.go.
type lrItem struct {
	Item
	Look int
}

// closureLR1One computes the closure of a single LR(1) item, using the
// dummy lookahead convention: when the seed item's lookahead is
// dummyLookahead, generated items either inherit dummyLookahead
// (propagated lookahead) or receive a concrete terminal found directly in
// FIRST of what follows (spontaneous lookahead). When the seed's
// lookahead is a real terminal, every generated item's lookahead is
// computed the ordinary LR(1) way, FIRST(βa).
func closureLR1One(g *Grammar, fs *FirstSets, seed lrItem) []lrItem {
	type key struct {
		it   Item
		look int
	}
	seen := map[key]bool{}
	worklist := []lrItem{seed}
	seen[key{seed.Item, seed.Look}] = true

	for i := 0; i < len(worklist); i++ {
		cur := worklist[i]
		sym, ok := cur.NextSymbol(g)
		if !ok || g.IsTerminal(sym) {
			continue
		}
		beta := g.Rule(cur.Rule).Body[cur.Dot+1:]

		var looks []int
		if cur.Look == dummyLookahead {
			firstBeta, nullable := fs.OfSequence(beta)
			looks = firstBeta
			if nullable {
				looks = append(looks, dummyLookahead)
			}
		} else {
			seq := make([]int, 0, len(beta)+1)
			seq = append(seq, beta...)
			seq = append(seq, cur.Look)
			firstSeq, _ := fs.OfSequence(seq)
			looks = firstSeq
		}

		for _, ri := range g.NonTerm(sym).Rules {
			for _, lk := range looks {
				ni := Item{Rule: ri, Dot: 0}
				k := key{ni, lk}
				if !seen[k] {
					seen[k] = true
					worklist = append(worklist, lrItem{Item: ni, Look: lk})
				}
			}
		}
	}
	return worklist
}

// closureLR1Set computes the LR(1) closure of a kernel whose items each
// carry a whole set of real lookaheads, folding duplicate cores together.
// BuildTable calls it once per state, over the final converged lookahead
// sets, to recover the complete set of valid LALR(1) items (kernel and
// closure items alike) that Table needs to read off reduce actions.
func closureLR1Set(g *Grammar, fs *FirstSets, kernel map[Item]*indexSet) map[Item]*indexSet {
	out := map[Item]*indexSet{}
	type pair struct {
		it   Item
		look int
	}
	var queue []pair

	add := func(it Item, look int) {
		set, ok := out[it]
		if !ok {
			set = newIndexSet(fs.g.NumTerminals())
			out[it] = set
		}
		if set.Add(look) {
			queue = append(queue, pair{it, look})
		}
	}

	for it, la := range kernel {
		for _, t := range la.Elements() {
			add(it, t)
		}
	}

	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		sym, ok := cur.it.NextSymbol(g)
		if !ok || g.IsTerminal(sym) {
			continue
		}
		beta := g.Rule(cur.it.Rule).Body[cur.it.Dot+1:]
		seq := make([]int, 0, len(beta)+1)
		seq = append(seq, beta...)
		seq = append(seq, cur.look)
		firstSeq, _ := fs.OfSequence(seq)

		for _, ri := range g.NonTerm(sym).Rules {
			ni := Item{Rule: ri, Dot: 0}
			for _, t := range firstSeq {
				add(ni, t)
			}
		}
	}
	return out
}

// propagateLookaheads runs dragon book algorithm 4.62 (determine
// lookaheads) followed by a standard worklist fixed point (algorithm
// 4.63's propagation loop) over a Grammar's LR(0) automaton, and returns,
// for each state index, the final lookahead set of each of that state's
// kernel items.
func propagateLookaheads(g *Grammar, fs *FirstSets, states []*State) map[int]map[Item]*indexSet {
	numTerms := g.NumTerminals()
	lookaheads := make(map[int]map[Item]*indexSet, len(states))
	for _, st := range states {
		lookaheads[st.Index] = map[Item]*indexSet{}
		for _, it := range st.Kernel {
			lookaheads[st.Index][it] = newIndexSet(numTerms)
		}
	}
	lookaheads[0][Item{Rule: 0, Dot: 0}].Add(EOFIndex)

	type edge struct {
		fromState, toState int
		from, to           Item
	}
	var edges []edge

	for _, st := range states {
		for _, kItem := range st.Kernel {
			for _, gen := range closureLR1One(g, fs, lrItem{Item: kItem, Look: dummyLookahead}) {
				sym, ok := gen.NextSymbol(g)
				if !ok {
					continue
				}
				target := st.Goto[sym]
				targetItem := gen.Advance()
				if gen.Look == dummyLookahead {
					edges = append(edges, edge{st.Index, target, kItem, targetItem})
				} else {
					lookaheads[target][targetItem].Add(gen.Look)
				}
			}
		}
	}

	changed := true
	for changed {
		changed = false
		for _, e := range edges {
			src := lookaheads[e.fromState][e.from]
			dst := lookaheads[e.toState][e.to]
			for _, t := range src.Elements() {
				if dst.Add(t) {
					changed = true
				}
			}
		}
	}

	return lookaheads
}
