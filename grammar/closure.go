package grammar

import "sort"

// closureLR0 computes the LR(0) closure of a kernel item set: repeatedly
// add [B -> .γ] for every rule of every nonterminal immediately after a
// dot, until no new items appear. The result is sorted so that two equal
// item sets always produce identical slices, which BuildLR0Automaton
// relies on to detect when a goto transition lands on an already-known
// state.
func closureLR0(g *Grammar, kernel []Item) []Item {
	seen := make(map[Item]bool, len(kernel)*2)
	worklist := make([]Item, 0, len(kernel)*2)
	for _, it := range kernel {
		if !seen[it] {
			seen[it] = true
			worklist = append(worklist, it)
		}
	}
	for i := 0; i < len(worklist); i++ {
		sym, ok := worklist[i].NextSymbol(g)
		if !ok || g.IsTerminal(sym) {
			continue
		}
		for _, ri := range g.NonTerm(sym).Rules {
			ni := Item{Rule: ri, Dot: 0}
			if !seen[ni] {
				seen[ni] = true
				worklist = append(worklist, ni)
			}
		}
	}
	sort.Slice(worklist, func(i, j int) bool {
		if worklist[i].Rule != worklist[j].Rule {
			return worklist[i].Rule < worklist[j].Rule
		}
		return worklist[i].Dot < worklist[j].Dot
	})
	return worklist
}

// gotoKernel returns the (unsorted-input-tolerant, deduplicated, sorted)
// kernel of the state reached by advancing every item in closure that has
// sym immediately after its dot.
func gotoKernel(g *Grammar, closure []Item, sym int) []Item {
	seen := map[Item]bool{}
	var kernel []Item
	for _, it := range closure {
		if s, ok := it.NextSymbol(g); ok && s == sym {
			adv := it.Advance()
			if !seen[adv] {
				seen[adv] = true
				kernel = append(kernel, adv)
			}
		}
	}
	sort.Slice(kernel, func(i, j int) bool {
		if kernel[i].Rule != kernel[j].Rule {
			return kernel[i].Rule < kernel[j].Rule
		}
		return kernel[i].Dot < kernel[j].Dot
	})
	return kernel
}
