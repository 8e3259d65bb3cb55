package statemachine

import (
	"fmt"
	"log/slog"
)

// DefaultMachineName is used when a Definition leaves Name empty.
const DefaultMachineName = "fsm"

// Definition is the complete description of a machine, assembled up front and handed to Build.
// Transitions are registered in order, so a later transition with the same source state and
// event kind replaces an earlier one.
type Definition struct {
	Name        string
	States      []State
	Initial     State
	Final       []State
	Transitions []Transition
}

// Option configures runtime collaborators of a machine.
type Option func(*Machine)

// WithObserver attaches an observer notified after every Fire.
// Calling it more than once fans out to every observer given.
func WithObserver(o Observer) Option {
	return func(m *Machine) {
		if o == nil {
			return
		}
		if _, ok := m.observer.(noopObserver); ok {
			m.observer = o
			return
		}
		m.observer = NewMultiObserver(m.observer, o)
	}
}

// WithLogger is shorthand for WithObserver(NewLogObserver(log)).
func WithLogger(log *slog.Logger) Option {
	if log == nil {
		return func(*Machine) {}
	}
	return WithObserver(NewLogObserver(log))
}

// Build validates def and returns a machine positioned in its initial state.
//
// Each transition is checked with ValidateTransition before being registered, then
// ValidateDefinition checks the initial and final states. The returned machine does not
// share any mutable data with def.
func Build(def Definition, opts ...Option) (*Machine, error) {
	name := def.Name
	if name == "" {
		name = DefaultMachineName
	}

	for _, s := range def.States {
		if s.IsZero() {
			return nil, &DefinitionError{Machine: name, Err: ErrMissingStateName}
		}
	}
	states := NewStateSet(def.States...)

	registry := NewTransitionRegistry()
	for _, t := range def.Transitions {
		if t.Name == "" {
			t.Name = DefaultTransitionName
		}
		if err := ValidateTransition(t, states); err != nil {
			return nil, err
		}
		registry.Register(t)
	}

	finals := NewStateSet(def.Final...)
	if err := ValidateDefinition(name, states, def.Initial, finals); err != nil {
		return nil, err
	}

	m := &Machine{
		name:        name,
		states:      states,
		initial:     def.Initial,
		finals:      finals,
		transitions: registry,
		observer:    noopObserver{},
		current:     def.Initial,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// MustBuild is like Build but panics on an invalid definition.
func MustBuild(def Definition, opts ...Option) *Machine {
	m, err := Build(def, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to build state machine: %v", err))
	}
	return m
}
