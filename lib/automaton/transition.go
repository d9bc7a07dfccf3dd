package automaton

import "errors"

var (
	ErrOkWithTo          = errors.New("automaton: a transition cannot have both Ok and To")
	ErrOkWithoutDo       = errors.New("automaton: a transition with Ok needs a Do handler")
	ErrEmptyTransition   = errors.New("automaton: a transition needs To or Do")
	ErrOkWithoutMutation = errors.New("automaton: Do returned without setting one of the Ok states")
	ErrNewStateWithError = errors.New("automaton: Do set the state and returned an error")
)

// Handler runs when a transition fires. in is the value passed to Fire.
type Handler func(state *StateHandle, in any) error

// Transition describes what happens when an event occurs in one of the At states.
// To moves unconditionally, Ok lists the states Do may choose from.
type Transition struct {
	At States
	Ok States
	To State
	Do Handler
}

type invoker func(in any) error

func (t Transition) compile(state *State) invoker {
	mustMutate := t.Ok != nil
	switch {
	case t.Ok == nil && t.Do == nil && t.To == NoState:
		panic(ErrEmptyTransition)
	case t.Ok != nil && t.To != NoState:
		panic(ErrOkWithTo)
	case t.Ok != nil && t.Do == nil:
		panic(ErrOkWithoutDo)
	}
	return func(in any) error {
		handle := newStateHandle(state, t.At, t.Ok)
		var err error
		if t.Do != nil {
			err = t.Do(handle, in)
		}
		if err != nil {
			if handle.IsMutated() {
				panic(ErrNewStateWithError)
			}
			return err
		}
		if mustMutate && !handle.IsMutated() {
			panic(ErrOkWithoutMutation)
		}
		if t.To != NoState {
			*state = t.To
		}
		return nil
	}
}
