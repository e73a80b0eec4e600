package grammar

import (
	"sort"
	"strconv"
	"strings"
)

// State is one state of the grammar's LR(0) automaton: its kernel items
// (the seed the state was built from), the full closure over that kernel,
// and its outgoing transitions keyed by combined-space symbol index.
type State struct {
	Index   int
	Kernel  []Item
	Closure []Item
	Goto    map[int]int
}

// kernelKey renders a kernel item set into a canonical string so that
// BuildLR0Automaton can use it as a map key to detect when a goto
// transition lands on a state it has already built. Kernel is assumed
// already sorted (see gotoKernel and closureLR0's callers).
func kernelKey(kernel []Item) string {
	var sb strings.Builder
	for i, it := range kernel {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(strconv.Itoa(it.Rule))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(it.Dot))
	}
	return sb.String()
}

// BuildLR0Automaton constructs the grammar's canonical LR(0) automaton by a
// deterministic FIFO worklist starting from the augmented start rule's
// kernel {[_START -> .S]}. States are discovered and numbered in a stable
// order (by ascending combined symbol index at each step) so that two
// calls against the same Grammar always produce identically-numbered
// states; this is what lets Table.REZIBytes round-trip produce byte-
// identical output, the determinism property spec.md §8 calls out.
func BuildLR0Automaton(g *Grammar) []*State {
	startKernel := []Item{{Rule: 0, Dot: 0}}
	startClosure := closureLR0(g, startKernel)
	states := []*State{{
		Index:   0,
		Kernel:  startKernel,
		Closure: startClosure,
		Goto:    map[int]int{},
	}}
	index := map[string]int{kernelKey(startKernel): 0}

	for i := 0; i < len(states); i++ {
		st := states[i]

		symSet := map[int]bool{}
		for _, it := range st.Closure {
			if sym, ok := it.NextSymbol(g); ok {
				symSet[sym] = true
			}
		}
		syms := make([]int, 0, len(symSet))
		for s := range symSet {
			syms = append(syms, s)
		}
		sort.Ints(syms)

		for _, sym := range syms {
			kernel := gotoKernel(g, st.Closure, sym)
			key := kernelKey(kernel)
			target, exists := index[key]
			if !exists {
				target = len(states)
				index[key] = target
				states = append(states, &State{
					Index:   target,
					Kernel:  kernel,
					Closure: closureLR0(g, kernel),
					Goto:    map[int]int{},
				})
			}
			st.Goto[sym] = target
		}
	}
	return states
}
