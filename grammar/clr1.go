package grammar

import (
	"sort"
	"strconv"
	"strings"
)

// CLR1State is one state of the canonical (unmerged) LR(1) automaton: its
// full item set, each item carrying its own single lookahead, and its
// outgoing transitions. Unlike an LALR(1) State, two CLR1States are never
// merged just because they share a core.
//
// This construction is not used to drive parsing — spec.md binds the
// production automaton to LALR(1) — but is kept as a cross-check: running
// BuildCLR1Table on a grammar and comparing its state count or conflicts
// against BuildTable's LALR(1) result is the standard way to tell whether
// a grammar's LALR(1) behavior diverges from its "true" LR(1) behavior
// because core-merging introduced a conflict that wasn't there canonically.
type CLR1State struct {
	Index int
	Items []lrItem
	Goto  map[int]int
}

func clr1Key(items []lrItem) string {
	type entry struct{ rule, dot, look int }
	keys := make([]entry, len(items))
	for i, it := range items {
		keys[i] = entry{it.Rule, it.Dot, it.Look}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].rule != keys[j].rule {
			return keys[i].rule < keys[j].rule
		}
		if keys[i].dot != keys[j].dot {
			return keys[i].dot < keys[j].dot
		}
		return keys[i].look < keys[j].look
	})
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(strconv.Itoa(k.rule))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(k.dot))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(k.look))
	}
	return sb.String()
}

func closureLR1Full(g *Grammar, fs *FirstSets, kernel []lrItem) []lrItem {
	seen := map[lrItem]bool{}
	worklist := make([]lrItem, 0, len(kernel)*2)
	for _, it := range kernel {
		if !seen[it] {
			seen[it] = true
			worklist = append(worklist, it)
		}
	}
	for i := 0; i < len(worklist); i++ {
		cur := worklist[i]
		sym, ok := cur.NextSymbol(g)
		if !ok || g.IsTerminal(sym) {
			continue
		}
		beta := g.Rule(cur.Rule).Body[cur.Dot+1:]
		seq := make([]int, 0, len(beta)+1)
		seq = append(seq, beta...)
		seq = append(seq, cur.Look)
		firstSeq, _ := fs.OfSequence(seq)

		for _, ri := range g.NonTerm(sym).Rules {
			for _, t := range firstSeq {
				ni := lrItem{Item: Item{Rule: ri, Dot: 0}, Look: t}
				if !seen[ni] {
					seen[ni] = true
					worklist = append(worklist, ni)
				}
			}
		}
	}
	sort.Slice(worklist, func(i, j int) bool {
		a, b := worklist[i], worklist[j]
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		if a.Dot != b.Dot {
			return a.Dot < b.Dot
		}
		return a.Look < b.Look
	})
	return worklist
}

func gotoLR1Full(g *Grammar, items []lrItem, sym int) []lrItem {
	seen := map[lrItem]bool{}
	var kernel []lrItem
	for _, it := range items {
		if s, ok := it.NextSymbol(g); ok && s == sym {
			adv := lrItem{Item: it.Advance(), Look: it.Look}
			if !seen[adv] {
				seen[adv] = true
				kernel = append(kernel, adv)
			}
		}
	}
	return kernel
}

// BuildCLR1Automaton constructs the canonical LR(1) automaton (algorithm
// 4.59 in the purple dragon book), with no core-merging.
func BuildCLR1Automaton(g *Grammar, fs *FirstSets) []*CLR1State {
	startKernel := []lrItem{{Item: Item{Rule: 0, Dot: 0}, Look: EOFIndex}}
	startClosure := closureLR1Full(g, fs, startKernel)
	states := []*CLR1State{{Index: 0, Items: startClosure, Goto: map[int]int{}}}
	index := map[string]int{clr1Key(startClosure): 0}

	for i := 0; i < len(states); i++ {
		st := states[i]

		symSet := map[int]bool{}
		for _, it := range st.Items {
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
			kernel := gotoLR1Full(g, st.Items, sym)
			closure := closureLR1Full(g, fs, kernel)
			key := clr1Key(closure)
			target, exists := index[key]
			if !exists {
				target = len(states)
				index[key] = target
				states = append(states, &CLR1State{Index: target, Items: closure, Goto: map[int]int{}})
			}
			st.Goto[sym] = target
		}
	}
	return states
}

// CLR1StateCount returns the number of states in the grammar's canonical
// LR(1) automaton. It is always >= the number of LALR(1) states BuildTable
// produces, since LALR(1) merges canonical states that share a core;
// tests use a gap between the two counts as a signal worth looking at,
// though a gap alone doesn't imply the merge introduced a conflict.
func CLR1StateCount(g *Grammar) int {
	fs := ComputeFirst(g)
	return len(BuildCLR1Automaton(g, fs))
}

// BuildCLR1Table builds the canonical LR(1) action/goto table, with the
// same conflict-resolution policy as BuildTable. It is not used by
// Frontend; it exists so tests can cross-check an LALR(1) table against
// the canonical construction it was merged down from.
func BuildCLR1Table(g *Grammar) (*Table, error) {
	fs := ComputeFirst(g)
	states := BuildCLR1Automaton(g, fs)

	t := &Table{
		NumStates:       len(states),
		NumTerminals:    g.NumTerminals(),
		NumNonterminals: g.NumNonterminals(),
		StartState:      0,
		g:               g,
	}
	t.Actions = make([][]Action, t.NumStates)
	t.Gotos = make([][]int, t.NumStates)
	for i := range t.Actions {
		t.Actions[i] = make([]Action, t.NumTerminals)
	}
	for i := range t.Gotos {
		row := make([]int, t.NumNonterminals)
		for j := range row {
			row[j] = -1
		}
		t.Gotos[i] = row
	}

	for _, st := range states {
		for sym, target := range st.Goto {
			if g.IsTerminal(sym) {
				t.Actions[st.Index][sym] = Action{Kind: ActionShift, Target: target}
			} else {
				t.Gotos[st.Index][sym-t.NumTerminals] = target
			}
		}
		for _, it := range st.Items {
			if !it.AtEnd(g) {
				continue
			}
			if it.Rule == 0 {
				if it.Look == EOFIndex {
					if err := t.setAction(st.Index, it.Look, Action{Kind: ActionAccept}); err != nil {
						return nil, err
					}
				}
				continue
			}
			if err := t.setAction(st.Index, it.Look, Action{Kind: ActionReduce, Target: it.Rule}); err != nil {
				return nil, err
			}
		}
	}

	return t, nil
}
