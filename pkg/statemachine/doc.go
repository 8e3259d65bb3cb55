// Package statemachine provides a deterministic, concurrency-safe finite state machine
// (FSM) engine.
//
// A machine is described by a Definition: a set of named States, an initial state,
// optional final states and a list of Transitions. Each transition is keyed by its
// source state and the EventKind that triggers it, so at most one transition can
// match a given event in a given state.
//
// The package handles:
//  1. Structural validation of definitions before a machine can run
//  2. Exact-kind dispatch of events to transitions
//  3. Execution of optional side-effect Handlers before the state change commits
//  4. Serialised event delivery through a single mutex
//
// # Architecture
//
// TransitionRegistry stores transitions in a map keyed by (source state, event kind).
// Registering a transition with an existing key replaces the previous one, which makes
// duplicate transitions impossible by construction. Build runs ValidateTransition on
// every transition, registers it, then checks the initial and final states with
// ValidateDefinition.
//
// Machine.Fire evaluates, in order: final-state absorption, the nil-event guard,
// the transition lookup, the handler call and finally the commit. Everything happens
// inside one critical section, handler included.
//
// # Usage
//
//	import (
//	    "context"
//	    "github.com/dmitrymomot/easystates/pkg/statemachine"
//	)
//
//	var (
//	    Locked   = statemachine.NewState("locked")
//	    Unlocked = statemachine.NewState("unlocked")
//	)
//
//	const (
//	    Coin statemachine.EventKind = "coin"
//	    Push statemachine.EventKind = "push"
//	)
//
//	machine, err := statemachine.Build(statemachine.Definition{
//	    Name:    "turnstile",
//	    States:  []statemachine.State{Locked, Unlocked},
//	    Initial: Locked,
//	    Transitions: []statemachine.Transition{
//	        {Name: "unlock", Source: Locked, Kind: Coin, Target: Unlocked, Handler: unlock},
//	        {Name: "lock", Source: Unlocked, Kind: Push, Target: Locked, Handler: lock},
//	    },
//	})
//
//	state, err := machine.Fire(context.Background(), statemachine.NewEvent(Coin, "coin"))
//
// # Ignored Events
//
// Events fired while the machine is in a final state, nil events and events with no
// matching transition do not change anything and are not errors. Attach an Observer
// (WithObserver, WithLogger) to see them.
//
// # Error Handling
//
// Build returns *TransitionError or *DefinitionError; both wrap a sentinel such as
// ErrUnknownSourceState or ErrUnknownInitialState. Fire returns *DispatchError when a
// handler fails, carrying the transition, the event and the cause:
//
//	if statemachine.IsDispatchError(err) { /* ... */ }
//
// # Concurrency
//
// Fire holds the machine's write lock while the handler runs, so slow handlers delay
// other callers. Observers are notified after the lock is released and receive a
// Snapshot taken inside the critical section.
//
// The lock is not reentrant. A handler must not call Fire, Current, Snapshot or any other
// accessor on its own machine; that call deadlocks. Observers may call them freely.
package statemachine
