// Package runtime implements the shift/reduce parsing driver: algorithm
// 4.44 of the purple dragon book, adapted to drive synthesized-attribute
// callbacks directly off the value stack instead of building a generic
// parse tree (spec.md §4.H).
package runtime

import (
	"fmt"
	"sort"

	"github.com/dekarrin/ictiobus/grammar"
	"github.com/dekarrin/ictiobus/internal/util"
	"github.com/dekarrin/ictiobus/lex"
)

// Driver drives a compiled grammar.Table over a token stream. A Driver is
// reusable across many Parse calls and safe for concurrent use, since all
// per-parse state lives on the stacks Parse allocates locally.
type Driver struct {
	table  *grammar.Table
	onStep func(Event)
}

// NewDriver returns a Driver for the given table.
func NewDriver(table *grammar.Table) *Driver {
	return &Driver{table: table}
}

// OnStep registers a listener invoked once per shift, reduce, accept, or
// error step, the way the teacher's RegisterTraceListener reported each
// step of its own LR loop. Passing nil disables tracing.
func (d *Driver) OnStep(fn func(Event)) {
	d.onStep = fn
}

func (d *Driver) notify(e Event) {
	if d.onStep != nil {
		d.onStep(e)
	}
}

// Parse runs the shift/reduce loop over tokens, which must end with a
// terminal at grammar.EOFIndex (lex.Tokenizer.Tokenize always appends
// one). b is the builder instance passed through to every Callback
// invoked during this parse (see builder.Callback); pass nil when no
// callback needs per-parse state. It returns the value produced by the
// start rule's reduction — the augmented rule's accept step returns the
// value already on top of the stack directly rather than invoking the
// augmented rule's (no-op) callback, per spec.md §4.H step 4 and §6 — or
// a *ParseError if the table has no action for some state/token pair.
func (d *Driver) Parse(tokens []lex.Token, b any) (any, error) {
	g := d.table.Grammar()

	var stateStack util.Stack[int]
	var valueStack util.Stack[any]
	var startStack util.Stack[int]
	var stopStack util.Stack[int]

	stateStack.Push(d.table.StartState)

	pos := 0
	a := tokens[pos]

	for {
		s := stateStack.Peek()
		act := d.table.Action(s, a.Terminal)

		switch act.Kind {
		case grammar.ActionShift:
			d.notify(Event{Kind: EventShift, State: s, Token: a})
			valueStack.Push(a)
			startStack.Push(a.Start)
			stopStack.Push(a.Stop)
			stateStack.Push(act.Target)
			if pos+1 < len(tokens) {
				pos++
			}
			a = tokens[pos]

		case grammar.ActionReduce:
			rule := g.Rule(act.Target)
			d.notify(Event{Kind: EventReduce, State: s, Token: a, Rule: act.Target})

			n := rule.Arity()
			bodyValues := make([]any, n)
			var start, stop int
			if n == 0 {
				if !stopStack.Empty() {
					start = stopStack.Peek()
				} else {
					start = a.Start
				}
				stop = a.Start
			} else {
				for i := n - 1; i >= 0; i-- {
					bodyValues[i] = valueStack.Pop()
					stateStack.Pop()
					thisStop := stopStack.Pop()
					thisStart := startStack.Pop()
					if i == n-1 {
						stop = thisStop
					}
					if i == 0 {
						start = thisStart
					}
				}
			}

			args := make([]any, 0, len(rule.ParamIndices))
			for _, pi := range rule.ParamIndices {
				args = append(args, bodyValues[pi])
			}
			value := rule.Callback(b, start, stop, args)

			t := stateStack.Peek()
			target := d.table.Goto(t, rule.Head)
			if target < 0 {
				return nil, fmt.Errorf("runtime: no goto from state %d on %s; grammar or table is malformed", t, g.Term(a.Terminal).Name)
			}
			stateStack.Push(target)
			valueStack.Push(value)
			startStack.Push(start)
			stopStack.Push(stop)

		case grammar.ActionAccept:
			d.notify(Event{Kind: EventAccept, State: s, Token: a})
			return valueStack.Peek(), nil

		default: // grammar.ActionError
			d.notify(Event{Kind: EventError, State: s, Token: a})
			expected := d.expectedNames(s)
			msg := fmt.Sprintf("unexpected %s; %s", a.ClassName, expectedMessage(expected))
			return nil, parseErrorFromToken(msg, a, expected)
		}
	}
}

// expectedNames lists, sorted by name, the display name of every terminal
// that would NOT be an error in state, in the style of the teacher's
// getExpectedString/findExpectedTokens.
func (d *Driver) expectedNames(state int) []string {
	g := d.table.Grammar()
	var names []string
	for i := 0; i < g.NumTerminals(); i++ {
		if d.table.Action(state, i).Kind == grammar.ActionError {
			continue
		}
		name := g.Term(i).Name
		if i == grammar.EOFIndex {
			name = "end of input"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func expectedMessage(names []string) string {
	if len(names) == 0 {
		return "no valid continuation from here"
	}
	return "expected " + util.MakeTextList(names)
}
