package runtime

import "github.com/dekarrin/ictiobus/lex"

// EventKind distinguishes the steps a Driver reports through OnStep.
type EventKind int

const (
	EventShift EventKind = iota
	EventReduce
	EventAccept
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventShift:
		return "shift"
	case EventReduce:
		return "reduce"
	case EventAccept:
		return "accept"
	default:
		return "error"
	}
}

// Event is one step of the shift/reduce loop, delivered to a listener
// registered with Driver.OnStep. It carries whichever fields are relevant
// to Kind: State and Token are set for every kind; Rule is only set for
// EventReduce.
type Event struct {
	Kind  EventKind
	State int
	Token lex.Token
	Rule  int
}
