package statemachine

import "slices"

// Builder assembles a Definition step by step.
// All state lives in the Definition it returns; Build is delegated to the package-level Build.
type Builder struct {
	def     Definition
	pending Transition
}

// NewBuilder starts a definition with the given name, initial state and declared states.
func NewBuilder(name string, initial State, states ...State) *Builder {
	return &Builder{
		def: Definition{
			Name:    name,
			States:  slices.Clone(states),
			Initial: initial,
		},
	}
}

// From starts a new transition from state, discarding any unfinished one.
func (b *Builder) From(state State) *Builder {
	b.pending = Transition{Source: state}
	return b
}

// When sets the event kind that triggers the pending transition.
func (b *Builder) When(kind EventKind) *Builder {
	b.pending.Kind = kind
	return b
}

// To sets the target state of the pending transition.
func (b *Builder) To(state State) *Builder {
	b.pending.Target = state
	return b
}

func (b *Builder) Named(name string) *Builder {
	b.pending.Name = name
	return b
}

func (b *Builder) WithHandler(h Handler) *Builder {
	b.pending.Handler = h
	return b
}

// Add validates the pending transition against the declared states and appends it.
// On error the pending transition is kept so the caller can fix it.
func (b *Builder) Add() (*Builder, error) {
	if _, err := b.WithTransition(b.pending); err != nil {
		return b, err
	}
	b.pending = Transition{}
	return b, nil
}

// WithTransition validates t and appends it to the definition.
func (b *Builder) WithTransition(t Transition) (*Builder, error) {
	if t.Name == "" {
		t.Name = DefaultTransitionName
	}
	if err := ValidateTransition(t, NewStateSet(b.def.States...)); err != nil {
		return b, err
	}
	b.def.Transitions = append(b.def.Transitions, t)
	return b, nil
}

// FinalStates registers states that absorb every event once entered.
func (b *Builder) FinalStates(states ...State) *Builder {
	b.def.Final = append(b.def.Final, states...)
	return b
}

// Definition returns a copy of the definition assembled so far.
func (b *Builder) Definition() Definition {
	return Definition{
		Name:        b.def.Name,
		States:      slices.Clone(b.def.States),
		Initial:     b.def.Initial,
		Final:       slices.Clone(b.def.Final),
		Transitions: slices.Clone(b.def.Transitions),
	}
}

// Build validates the definition and returns the machine.
func (b *Builder) Build(opts ...Option) (*Machine, error) {
	return Build(b.Definition(), opts...)
}
