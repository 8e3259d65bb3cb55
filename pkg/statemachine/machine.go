package statemachine

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Machine is a validated, runnable finite state machine.
// Obtain one through Build; the zero value is not usable.
//
// Fire holds the write lock for its whole body, including the handler call, so a slow
// handler delays every other Fire on the same machine. Read accessors take the read lock.
// The lock is not reentrant: a Handler that calls Fire or any read accessor on the machine
// it is running on deadlocks. Observers run after the lock is released and may do both.
type Machine struct {
	name        string
	states      StateSet
	initial     State
	finals      StateSet
	transitions *TransitionRegistry
	observer    Observer

	mu             sync.RWMutex
	current        State
	lastEvent      Event
	lastTransition *Transition
	version        uint64
}

func (m *Machine) Name() string {
	return m.name
}

// Current returns the state the machine is in.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Machine) InitialState() State {
	return m.initial
}

// States returns the declared states ordered by name.
func (m *Machine) States() []State {
	return m.states.Sorted()
}

// FinalStates returns the final states ordered by name.
func (m *Machine) FinalStates() []State {
	return m.finals.Sorted()
}

// Transitions returns the registered transitions ordered by source state, then kind.
func (m *Machine) Transitions() []Transition {
	return m.transitions.Transitions()
}

// LastEvent returns the event that triggered the last transition, or nil.
func (m *Machine) LastEvent() Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastEvent
}

// LastTransition returns the last transition taken, if any.
func (m *Machine) LastTransition() (Transition, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastTransition == nil {
		return Transition{}, false
	}
	return *m.lastTransition, true
}

// IsFinal reports whether the machine sits in a final state and will ignore further events.
func (m *Machine) IsFinal() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isFinalLocked()
}

func (m *Machine) isFinalLocked() bool {
	return len(m.finals) > 0 && m.finals.Contains(m.current)
}

// Snapshot returns a consistent view of the machine for monitoring.
func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// CanFire reports whether Fire(event) would take a transition right now.
// Handlers are not invoked.
func (m *Machine) CanFire(event Event) bool {
	if isNilEvent(event) {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.isFinalLocked() {
		return false
	}
	_, ok := m.transitions.Lookup(m.current, event.Kind())
	return ok
}

// Fire offers event to the machine and returns the resulting state.
//
// A machine in a final state, a nil event (a typed nil such as (*BaseEvent)(nil) included),
// and an event with no transition from the current state all leave the machine untouched
// and return a nil error. When the matched transition's handler fails, nothing is committed
// and a *DispatchError is returned along with the unchanged state.
func (m *Machine) Fire(ctx context.Context, event Event) (State, error) {
	start := time.Now()
	n := m.dispatch(ctx, event)
	n.Duration = time.Since(start)

	m.observer.Observe(ctx, n)

	return n.To, n.Err
}

// dispatch runs the whole algorithm inside one critical section so a lookup can never
// be paired with a commit made against a different current state.
func (m *Machine) dispatch(ctx context.Context, event Event) Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.fireLocked(ctx, event)
	n.Snapshot = m.snapshotLocked()
	return n
}

func (m *Machine) fireLocked(ctx context.Context, event Event) Notification {
	if isNilEvent(event) {
		event = nil
	}
	n := Notification{
		Machine: m.name,
		From:    m.current,
		To:      m.current,
		Event:   event,
	}

	if m.isFinalLocked() {
		n.Outcome = OutcomeAbsorbed
		return n
	}

	if event == nil {
		n.Outcome = OutcomeNullEvent
		return n
	}

	t, ok := m.transitions.Lookup(m.current, event.Kind())
	if !ok {
		n.Outcome = OutcomeUnmatched
		return n
	}
	n.Transition = &t

	if t.Handler != nil {
		if err := invoke(ctx, t.Handler, event); err != nil {
			n.Outcome = OutcomeFailed
			n.Err = &DispatchError{
				Machine:    m.name,
				Transition: t,
				Event:      event,
				Err:        err,
			}
			return n
		}
	}

	m.current = t.Target
	m.lastEvent = event
	m.lastTransition = &t
	m.version++

	n.Outcome = OutcomeTransitioned
	n.To = t.Target
	return n
}

// invoke runs h and converts a panic into an error so the lock is always released
// with the machine in its pre-transition state.
func invoke(ctx context.Context, h Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h(ctx, event)
}
