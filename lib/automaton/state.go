package automaton

import "errors"

var (
	ErrIllegalStateMutation   = errors.New("automaton: state may not be set to this value here")
	ErrMultipleStateMutations = errors.New("automaton: state was set more than once")
	ErrUnexpectedMutatedState = errors.New("automaton: state was queried after it was set")
	ErrNonTriggeringState     = errors.New("automaton: queried state cannot trigger this transition")
)

// State is one state of an automaton.
// Define states starting from iota + 1, the zero value means "no state".
type State int

// NoState is the invalid, unset state.
const NoState State = 0

// IsAny reports whether s equals one of states.
func (s State) IsAny(states ...State) bool {
	for _, other := range states {
		if s == other {
			return true
		}
	}
	return false
}

type States []State

// StateHandle is passed to a transition's Do handler.
// It allows a single change of the state to one of the transition's Ok states
// and panics on anything else.
type StateHandle struct {
	state   *State
	at      States
	ok      States
	mutated bool
}

func newStateHandle(state *State, at States, ok States) *StateHandle {
	return &StateHandle{state: state, at: at, ok: ok}
}

// Set moves the automaton to state.
func (h *StateHandle) Set(state State) {
	if !state.IsAny(h.ok...) {
		panic(ErrIllegalStateMutation)
	}
	if h.mutated {
		panic(ErrMultipleStateMutations)
	}
	h.mutated = true
	*h.state = state
}

// IsMutated reports whether Set was called.
func (h *StateHandle) IsMutated() bool {
	return h.mutated
}

// Is reports whether the transition was triggered in state.
// Only states listed in the transition's At may be queried,
// and only before the state was changed.
func (h *StateHandle) Is(state State) bool {
	if h.mutated {
		panic(ErrUnexpectedMutatedState)
	}
	if !state.IsAny(h.at...) {
		panic(ErrNonTriggeringState)
	}
	return *h.state == state
}

// IsAny reports whether Is holds for any of states.
func (h *StateHandle) IsAny(states ...State) bool {
	for _, state := range states {
		if h.Is(state) {
			return true
		}
	}
	return false
}
