package statemachine

import (
	"slices"
	"strings"
)

// StateSet is a set of states with unique names.
type StateSet map[State]struct{}

// NewStateSet builds a set from states, collapsing duplicates.
func NewStateSet(states ...State) StateSet {
	set := make(StateSet, len(states))
	for _, s := range states {
		set[s] = struct{}{}
	}
	return set
}

func (s StateSet) Contains(state State) bool {
	_, ok := s[state]
	return ok
}

// Sorted returns the members ordered by name.
func (s StateSet) Sorted() []State {
	out := make([]State, 0, len(s))
	for st := range s {
		out = append(out, st)
	}
	slices.SortFunc(out, func(a, b State) int {
		return strings.Compare(a.name, b.name)
	})
	return out
}

// DumpStates renders states as a ';'-terminated list ordered by name, e.g. "s1;s2;".
func DumpStates(states StateSet) string {
	var sb strings.Builder
	for _, s := range states.Sorted() {
		sb.WriteString(s.name)
		sb.WriteByte(';')
	}
	return sb.String()
}

// ValidateTransition checks that t is well formed and only references declared states.
// It must pass before t is registered.
func ValidateTransition(t Transition, states StateSet) error {
	var err error
	switch {
	case t.Source.IsZero():
		err = ErrMissingSourceState
	case t.Target.IsZero():
		err = ErrMissingTargetState
	case t.Kind == "":
		err = ErrMissingEventKind
	case !states.Contains(t.Source):
		err = ErrUnknownSourceState
	case !states.Contains(t.Target):
		err = ErrUnknownTargetState
	default:
		return nil
	}
	return &TransitionError{Transition: t, Err: err}
}

// ValidateDefinition checks that the initial state and every final state are declared.
// Uniqueness per (state, event kind) needs no check here: the registry keying makes
// duplicates impossible.
func ValidateDefinition(name string, states StateSet, initial State, finals StateSet) error {
	if !states.Contains(initial) {
		return &DefinitionError{
			Machine: name,
			State:   initial,
			States:  DumpStates(states),
			Err:     ErrUnknownInitialState,
		}
	}
	for _, f := range finals.Sorted() {
		if !states.Contains(f) {
			return &DefinitionError{
				Machine: name,
				State:   f,
				States:  DumpStates(states),
				Err:     ErrUnknownFinalState,
			}
		}
	}
	return nil
}
