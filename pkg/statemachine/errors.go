package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownInitialState = errors.New("initial state must belong to machine states")
	ErrUnknownFinalState   = errors.New("final state must belong to machine states")
	ErrMissingStateName    = errors.New("state name cannot be empty")

	ErrMissingSourceState = errors.New("source state not defined")
	ErrMissingTargetState = errors.New("target state not defined")
	ErrMissingEventKind   = errors.New("event kind not defined")
	ErrUnknownSourceState = errors.New("source state not declared in machine states")
	ErrUnknownTargetState = errors.New("target state not declared in machine states")

	ErrHandlerPanic = errors.New("transition handler panicked")
)

// DefinitionError reports a structurally invalid machine definition.
type DefinitionError struct {
	Machine string
	State   State
	States  string // ';'-joined dump of the declared states
	Err     error
}

func (e *DefinitionError) Error() string {
	switch {
	case errors.Is(e.Err, ErrUnknownInitialState):
		return fmt.Sprintf("machine '%s': initial state '%s' must belong to states: %s", e.Machine, e.State, e.States)
	case errors.Is(e.Err, ErrUnknownFinalState):
		return fmt.Sprintf("machine '%s': final state '%s' must belong to states: %s", e.Machine, e.State, e.States)
	default:
		return fmt.Sprintf("machine '%s': %v", e.Machine, e.Err)
	}
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// TransitionError reports a transition that failed validation and was not registered.
type TransitionError struct {
	Transition Transition
	Err        error
}

func (e *TransitionError) Error() string {
	t := e.Transition
	switch {
	case errors.Is(e.Err, ErrUnknownSourceState):
		return fmt.Sprintf("source state '%s' not declared in machine states for transition '%s'", t.Source, t.Name)
	case errors.Is(e.Err, ErrUnknownTargetState):
		return fmt.Sprintf("target state '%s' not declared in machine states for transition '%s'", t.Target, t.Name)
	default:
		return fmt.Sprintf("%v for transition '%s'", e.Err, t.Name)
	}
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// DispatchError is returned by Fire when the handler of the matched transition fails.
// The machine state is left unchanged.
type DispatchError struct {
	Machine    string
	Transition Transition
	Event      Event
	Err        error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("machine '%s': handling %s of %s failed: %v",
		e.Machine, describeEvent(e.Event), e.Transition, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

func IsDefinitionError(err error) bool {
	var e *DefinitionError
	return errors.As(err, &e)
}

func IsTransitionError(err error) bool {
	var e *TransitionError
	return errors.As(err, &e)
}

func IsDispatchError(err error) bool {
	var e *DispatchError
	return errors.As(err, &e)
}
