package statemachine

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultEventName is used by NewEvent when no name is supplied.
	DefaultEventName = "event"
	// DefaultTransitionName is used when a transition is registered without a name.
	DefaultTransitionName = "transition"
)

// State is a named mode of the machine. Two states are equal iff their names are equal,
// so State values can be compared with == and used as map keys.
// The zero value represents an absent state.
type State struct {
	name string
}

// NewState returns the state with the given name.
func NewState(name string) State {
	return State{name: name}
}

func (s State) Name() string {
	return s.name
}

// IsZero reports whether s is the absent state.
func (s State) IsZero() bool {
	return s.name == ""
}

func (s State) String() string {
	return s.name
}

// EventKind is the dispatch discriminator of an event.
// Matching is exact: there is no notion of kind hierarchies.
type EventKind string

func (k EventKind) String() string {
	return string(k)
}

// Event is an occurrence offered to the machine.
// Only Kind takes part in dispatch; Name and Timestamp are informational.
type Event interface {
	Kind() EventKind
	Name() string
	Timestamp() time.Time
}

// BaseEvent is a ready-made Event. Embed it in custom event structs to carry a payload.
type BaseEvent struct {
	ID        uuid.UUID
	EventKind EventKind
	EventName string
	CreatedAt time.Time
}

// NewEvent creates an event of the given kind stamped with the current time.
// An empty name falls back to DefaultEventName.
func NewEvent(kind EventKind, name string) *BaseEvent {
	if name == "" {
		name = DefaultEventName
	}
	return &BaseEvent{
		ID:        uuid.New(),
		EventKind: kind,
		EventName: name,
		CreatedAt: time.Now(),
	}
}

func (e *BaseEvent) Kind() EventKind {
	return e.EventKind
}

func (e *BaseEvent) Name() string {
	return e.EventName
}

func (e *BaseEvent) Timestamp() time.Time {
	return e.CreatedAt
}

func (e *BaseEvent) String() string {
	return fmt.Sprintf("Event{id=%s, name=%s, kind=%s, timestamp=%s}",
		e.ID, e.EventName, e.EventKind, e.CreatedAt.Format(time.RFC3339Nano))
}

// Handler executes the side effect of a transition. It runs before the state change
// is committed; returning an error leaves the machine in its source state.
//
// A handler runs while Fire holds the machine's write lock. It must not call Fire or
// any read accessor (Current, Snapshot, LastEvent, ...) on the same machine: the lock
// is not reentrant and the call deadlocks. Use the event and the transition it was
// registered on instead, or an Observer, which runs after the lock is released.
type Handler func(ctx context.Context, event Event) error

// TransitionKey is the identity of a transition within a machine.
type TransitionKey struct {
	Source State
	Kind   EventKind
}

// Transition is an edge from Source to Target triggered by events of Kind.
// Two transitions with the same Source and Kind are the same transition, whatever
// their Target or Handler.
type Transition struct {
	Name    string
	Source  State
	Target  State
	Kind    EventKind
	Handler Handler // optional
}

func (t Transition) Key() TransitionKey {
	return TransitionKey{Source: t.Source, Kind: t.Kind}
}

func (t Transition) String() string {
	var sb strings.Builder
	sb.WriteString("Transition{name=")
	sb.WriteString(t.Name)
	sb.WriteString(", source=")
	sb.WriteString(t.Source.Name())
	sb.WriteString(", target=")
	sb.WriteString(t.Target.Name())
	sb.WriteString(", kind=")
	sb.WriteString(string(t.Kind))
	if t.Handler != nil {
		sb.WriteString(", handler=yes")
	}
	sb.WriteString("}")
	return sb.String()
}

// describeEvent renders an event for snapshots and error messages.
func describeEvent(e Event) string {
	if isNilEvent(e) {
		return ""
	}
	if s, ok := e.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("Event{name=%s, kind=%s, timestamp=%s}",
		e.Name(), e.Kind(), e.Timestamp().Format(time.RFC3339Nano))
}

// isNilEvent reports whether e is absent: a nil interface or an interface holding a
// nil pointer, such as a (*BaseEvent)(nil).
func isNilEvent(e Event) bool {
	if e == nil {
		return true
	}
	switch v := reflect.ValueOf(e); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
