package grammar

import (
	"fmt"

	"github.com/dekarrin/rezi"
)

// ActionKind distinguishes the four things a parse table cell can tell the
// driver to do (spec.md §4.G).
type ActionKind int

const (
	ActionError ActionKind = iota
	ActionShift
	ActionReduce
	ActionAccept
)

func (k ActionKind) String() string {
	switch k {
	case ActionShift:
		return "shift"
	case ActionReduce:
		return "reduce"
	case ActionAccept:
		return "accept"
	default:
		return "error"
	}
}

// Action is one ACTION table cell. For ActionShift, Target is the state to
// push; for ActionReduce, Target is the rule index to reduce by; for
// ActionAccept and ActionError, Target is unused.
type Action struct {
	Kind   ActionKind
	Target int
}

// Table is a grammar's compiled LALR(1) action/goto tables: the product of
// BuildTable, and everything runtime.Driver needs to parse a token stream.
// Table is immutable and safe to share across goroutines.
type Table struct {
	NumStates       int
	NumTerminals    int
	NumNonterminals int
	StartState      int
	Actions         [][]Action
	Gotos           [][]int

	g *Grammar
}

// BuildTable runs FIRST/nullable analysis, constructs the LR(0) automaton,
// propagates LALR(1) lookaheads, and fills in the action/goto tables. It
// returns a ConflictError if a reduce/reduce conflict is found (always
// fatal) or, when g.StrictConflicts() is set, a shift/reduce conflict.
func BuildTable(g *Grammar) (*Table, error) {
	fs := ComputeFirst(g)
	states := BuildLR0Automaton(g)
	lookaheads := propagateLookaheads(g, fs, states)

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
	}

	for _, st := range states {
		kernel := make(map[Item]*indexSet, len(st.Kernel))
		for _, it := range st.Kernel {
			kernel[it] = lookaheads[st.Index][it]
		}
		full := closureLR1Set(g, fs, kernel)
		for it, la := range full {
			if !it.AtEnd(g) {
				continue
			}
			for _, term := range la.Elements() {
				if it.Rule == 0 {
					if term == EOFIndex {
						if err := t.setAction(st.Index, term, Action{Kind: ActionAccept}); err != nil {
							return nil, err
						}
					}
					continue
				}
				if err := t.setAction(st.Index, term, Action{Kind: ActionReduce, Target: it.Rule}); err != nil {
					return nil, err
				}
			}
		}
	}

	return t, nil
}

// setAction installs newAction into cell (state, term), resolving
// conflicts per spec.md §4.G: reduce/reduce is always fatal; shift/reduce
// resolves in favor of the shift unless the grammar was built with
// StrictConflicts, in which case it is fatal too.
func (t *Table) setAction(state, term int, newAction Action) error {
	cur := t.Actions[state][term]
	if cur.Kind == ActionError {
		t.Actions[state][term] = newAction
		return nil
	}
	if cur == newAction {
		return nil
	}

	switch {
	case cur.Kind == ActionReduce && newAction.Kind == ActionReduce:
		return &ConflictError{
			ReduceReduce: true,
			State:        state,
			Terminal:     t.g.Term(term).Name,
			RuleA:        t.g.Rule(cur.Target).String(t.g),
			RuleB:        t.g.Rule(newAction.Target).String(t.g),
		}
	case cur.Kind == ActionShift && newAction.Kind == ActionReduce:
		if t.g.StrictConflicts() {
			return &ConflictError{State: state, Terminal: t.g.Term(term).Name, RuleA: t.g.Rule(newAction.Target).String(t.g)}
		}
		return nil
	case cur.Kind == ActionReduce && newAction.Kind == ActionShift:
		if t.g.StrictConflicts() {
			return &ConflictError{State: state, Terminal: t.g.Term(term).Name, RuleA: t.g.Rule(cur.Target).String(t.g)}
		}
		t.Actions[state][term] = newAction
		return nil
	default:
		// accept never conflicts with anything else reachable at EOF in a
		// grammar with a single start rule.
		return nil
	}
}

// Action returns the ACTION table cell for the given state and (combined-
// space) terminal index.
func (t *Table) Action(state, terminal int) Action {
	return t.Actions[state][terminal]
}

// Goto returns the GOTO table cell for the given state and (combined-
// space) nonterminal index, or -1 if there is no transition.
func (t *Table) Goto(state, nonterminal int) int {
	return t.Gotos[state][nonterminal-t.NumTerminals]
}

// Grammar returns the Grammar the table was built from. It is nil on a
// Table produced by TableFromREZIBytes until AttachGrammar is called, since
// display names and callbacks aren't part of the serialized form; the
// driver does not attach one itself.
func (t *Table) Grammar() *Grammar { return t.g }

// AttachGrammar associates g with a table that was deserialized by
// TableFromREZIBytes.
func (t *Table) AttachGrammar(g *Grammar) { t.g = g }

// REZIBytes serializes the table's action/goto matrices with rezi, the way
// the rest of the ecosystem persists binary blobs to disk or to a column.
// Re-running BuildTable on the same Grammar and comparing REZIBytes output
// is the determinism property spec.md §8 calls for: state numbering comes
// from a deterministic FIFO worklist (BuildLR0Automaton) and each table
// cell's content does not depend on the order the cells are filled in, so
// two builds always serialize identically.
func (t *Table) REZIBytes() ([]byte, error) {
	data, err := rezi.Enc(*t)
	if err != nil {
		return nil, fmt.Errorf("encode parse table: %w", err)
	}
	return data, nil
}

// TableFromREZIBytes decodes a table previously produced by REZIBytes. The
// caller must call AttachGrammar before using the result with
// runtime.Driver.
func TableFromREZIBytes(data []byte) (*Table, error) {
	var t Table
	if _, err := rezi.Dec(data, &t); err != nil {
		return nil, fmt.Errorf("decode parse table: %w", err)
	}
	return &t, nil
}
