package grammar

import "fmt"

// GrammarError reports a problem found while validating or normalizing a
// grammar: an undeclared symbol reference, a missing start symbol, an empty
// grammar, or an uncompilable terminal pattern. GrammarError always aborts
// table construction; it is never something a caller should retry without
// changing the grammar declarations.
type GrammarError struct {
	Message string
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("grammar error: %s", e.Message)
}

func grammarErrorf(format string, args ...any) error {
	return &GrammarError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError is the common shape of the two build-time automaton
// conflicts: a reduce/reduce conflict (always fatal) and, when
// Builder.StrictConflicts is set, a shift/reduce conflict (ordinarily
// resolved silently in favor of the shift).
type ConflictError struct {
	// ReduceReduce is true for a reduce/reduce conflict, false for a
	// shift/reduce conflict reported under strict mode.
	ReduceReduce bool

	State    int
	Terminal string

	// RuleA and RuleB are the two competing rules, rendered as
	// "Head -> body" strings. For a shift/reduce conflict, RuleA is always
	// the rule that would be reduced and RuleB is empty.
	RuleA string
	RuleB string
}

func (e *ConflictError) Error() string {
	if e.ReduceReduce {
		return fmt.Sprintf("reduce/reduce conflict in state %d on terminal %q: reduce %s or reduce %s",
			e.State, e.Terminal, e.RuleA, e.RuleB)
	}
	return fmt.Sprintf("shift/reduce conflict in state %d on terminal %q: shift, or reduce %s",
		e.State, e.Terminal, e.RuleA)
}
