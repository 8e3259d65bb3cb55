package statemachine

import (
	"cmp"
	"slices"
)

// TransitionRegistry stores transitions keyed by (source state, event kind).
// Registering a transition whose key is already present replaces the previous one.
//
// The registry is not safe for concurrent mutation; Machine only reads it after Build.
type TransitionRegistry struct {
	transitions map[TransitionKey]Transition
}

func NewTransitionRegistry() *TransitionRegistry {
	return &TransitionRegistry{
		transitions: make(map[TransitionKey]Transition),
	}
}

// Register inserts t, replacing any transition with the same key. Last write wins.
func (r *TransitionRegistry) Register(t Transition) {
	r.transitions[t.Key()] = t
}

// Lookup returns the transition registered for exactly (state, kind).
func (r *TransitionRegistry) Lookup(state State, kind EventKind) (Transition, bool) {
	t, ok := r.transitions[TransitionKey{Source: state, Kind: kind}]
	return t, ok
}

func (r *TransitionRegistry) Len() int {
	return len(r.transitions)
}

// Transitions returns a copy of the registered transitions ordered by source name, then kind.
func (r *TransitionRegistry) Transitions() []Transition {
	out := make([]Transition, 0, len(r.transitions))
	for _, t := range r.transitions {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Transition) int {
		if c := cmp.Compare(a.Source.Name(), b.Source.Name()); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
	return out
}
