package statemachine

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/easystates/pkg/logger"
)

// Outcome classifies what a single Fire call did.
type Outcome string

const (
	OutcomeTransitioned Outcome = "transitioned"
	OutcomeAbsorbed     Outcome = "absorbed"   // machine already in a final state
	OutcomeNullEvent    Outcome = "null_event" // nil event offered
	OutcomeUnmatched    Outcome = "unmatched"  // no transition for (state, kind)
	OutcomeFailed       Outcome = "failed"     // handler returned an error
)

// Notification describes a completed Fire call.
// Transition is nil unless a transition matched.
type Notification struct {
	Machine    string
	Outcome    Outcome
	From       State
	To         State
	Event      Event
	Transition *Transition
	Err        error
	Snapshot   Snapshot
	Duration   time.Duration
}

// Observer receives a Notification after every Fire call. Observers run on the
// caller's goroutine once the machine lock has been released.
type Observer interface {
	Observe(ctx context.Context, n Notification)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(ctx context.Context, n Notification)

func (f ObserverFunc) Observe(ctx context.Context, n Notification) {
	f(ctx, n)
}

type noopObserver struct{}

func (noopObserver) Observe(context.Context, Notification) {}

// MultiObserver fans notifications out to several observers in order.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver skips nil observers.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	filtered := make([]Observer, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	return &MultiObserver{observers: filtered}
}

func (m *MultiObserver) Observe(ctx context.Context, n Notification) {
	for _, o := range m.observers {
		o.Observe(ctx, n)
	}
}

// LogObserver writes notifications to a slog.Logger.
// Ignored events are logged at warn level, handler failures at error level.
type LogObserver struct {
	log *slog.Logger
}

func NewLogObserver(log *slog.Logger) *LogObserver {
	if log == nil {
		log = slog.Default()
	}
	return &LogObserver{log: log.With(logger.Component("statemachine"))}
}

func (o *LogObserver) Observe(ctx context.Context, n Notification) {
	attrs := []slog.Attr{
		logger.Machine(n.Machine),
		logger.Outcome(string(n.Outcome)),
		logger.FromState(n.From.Name()),
		logger.Duration(n.Duration),
	}
	if n.Event != nil {
		attrs = append(attrs, logger.EventKind(string(n.Event.Kind())), logger.EventName(n.Event.Name()))
		if be, ok := n.Event.(*BaseEvent); ok {
			attrs = append(attrs, logger.EventID(be.ID))
		}
	}
	if n.Transition != nil {
		attrs = append(attrs, logger.Transition(n.Transition.Name))
	}

	switch n.Outcome {
	case OutcomeTransitioned:
		attrs = append(attrs, logger.ToState(n.To.Name()))
		o.log.LogAttrs(ctx, slog.LevelInfo, "state changed", attrs...)
	case OutcomeAbsorbed:
		o.log.LogAttrs(ctx, slog.LevelWarn, "machine is in a final state, event ignored", attrs...)
	case OutcomeNullEvent:
		o.log.LogAttrs(ctx, slog.LevelWarn, "nil event fired, state unchanged", attrs...)
	case OutcomeUnmatched:
		o.log.LogAttrs(ctx, slog.LevelDebug, "no transition for event, state unchanged", attrs...)
	case OutcomeFailed:
		attrs = append(attrs, logger.Error(n.Err))
		o.log.LogAttrs(ctx, slog.LevelError, "transition handler failed", attrs...)
	}
}
