package automaton

import "errors"

var (
	ErrAmbiguousAtAndKey    = errors.New("automaton: triggering state given both as key and in At")
	ErrMissingTriggerState  = errors.New("automaton: triggering state missing in At and key")
	ErrAmbiguousTransitions = errors.New("automaton: more than one transition for an event and state")
	ErrBadTransitionKey     = errors.New("automaton: event is not defined")
	ErrBadTransitionState   = errors.New("automaton: event is not defined for the current state")
)

// Transitions maps an event to the transitions it triggers.
// When the event is itself a State, it is the implicit At of its single transition.
type Transitions[E comparable] map[E][]Transition

// Listener observes every state change of a Machine.
type Listener[E comparable] func(event E, from, to State)

// Machine is a compiled set of transitions operating on one state.
// It is not safe for concurrent use.
type Machine[E comparable] struct {
	state       *State
	transitions map[E]map[State]invoker
	listeners   []Listener[E]
}

// Compile validates transitions and binds them to state.
// Invalid definitions panic since they are programming errors.
func Compile[E comparable](state *State, transitions Transitions[E]) *Machine[E] {
	compiled := make(map[E]map[State]invoker, len(transitions))
	for event, list := range transitions {
		at, eventIsState := any(event).(State)
		if eventIsState && len(list) > 1 {
			panic(ErrAmbiguousTransitions)
		}
		handlers := make(map[State]invoker)
		for _, transition := range list {
			if eventIsState {
				if transition.At != nil {
					panic(ErrAmbiguousAtAndKey)
				}
				transition.At = States{at}
			} else if transition.At == nil {
				panic(ErrMissingTriggerState)
			}
			invoke := transition.compile(state)
			for _, s := range transition.At {
				if _, has := handlers[s]; has {
					panic(ErrAmbiguousTransitions)
				}
				handlers[s] = invoke
			}
		}
		compiled[event] = handlers
	}
	return &Machine[E]{
		state:       state,
		transitions: compiled,
	}
}

// OnTransition registers a listener that is called after each state change.
func (m *Machine[E]) OnTransition(listener Listener[E]) {
	m.listeners = append(m.listeners, listener)
}

// State returns the current state.
func (m *Machine[E]) State() State {
	return *m.state
}

// Can reports whether event is defined for the current state.
func (m *Machine[E]) Can(event E) bool {
	_, err := m.lookup(event)
	return err == nil
}

// Fire runs the transition of event for the current state.
func (m *Machine[E]) Fire(event E, in any) error {
	invoke, err := m.lookup(event)
	if err != nil {
		return err
	}
	from := *m.state
	if err := invoke(in); err != nil {
		return err
	}
	if to := *m.state; to != from {
		for _, listener := range m.listeners {
			listener(event, from, to)
		}
	}
	return nil
}

func (m *Machine[E]) lookup(event E) (invoker, error) {
	handlers, ok := m.transitions[event]
	if !ok {
		return nil, ErrBadTransitionKey
	}
	invoke, ok := handlers[*m.state]
	if !ok {
		return nil, ErrBadTransitionState
	}
	return invoke, nil
}
