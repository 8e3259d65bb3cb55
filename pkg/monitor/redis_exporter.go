package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/easystates/pkg/logger"
	"github.com/dmitrymomot/easystates/pkg/statemachine"
)

// DefaultRedisPrefix prefixes every key and channel written by RedisExporter.
const DefaultRedisPrefix = "fsm:"

// RedisWriter is the subset of the go-redis API the exporter needs; *redis.Client
// and *redis.ClusterClient satisfy it.
type RedisWriter interface {
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// ExportedNotification is the JSON message published for every Fire call.
type ExportedNotification struct {
	Machine    string                `json:"machine"`
	Outcome    statemachine.Outcome  `json:"outcome"`
	From       string                `json:"from"`
	To         string                `json:"to"`
	EventKind  string                `json:"event_kind,omitempty"`
	Transition string                `json:"transition,omitempty"`
	Error      string                `json:"error,omitempty"`
	Snapshot   statemachine.Snapshot `json:"snapshot"`
	At         time.Time             `json:"at"`
}

// RedisExporter is a statemachine.Observer that mirrors machine snapshots into Redis
// for external dashboards. The snapshot of a machine is stored in the hash
// "<prefix><machine>" and every notification is published on "<prefix>events".
// Redis failures are logged and never reach the caller of Fire.
//
// Observers run after the machine lock is released, so notifications of concurrent Fire
// calls can arrive out of commit order. The exporter remembers the last snapshot Version
// written per machine and drops older snapshots, so the hash never moves backwards.
type RedisExporter struct {
	client RedisWriter
	prefix string
	log    *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	versions map[string]uint64
}

// RedisExporterOption configures a RedisExporter.
type RedisExporterOption func(*RedisExporter)

func WithRedisPrefix(prefix string) RedisExporterOption {
	return func(e *RedisExporter) {
		if prefix != "" {
			e.prefix = prefix
		}
	}
}

func WithExporterLogger(l *slog.Logger) RedisExporterOption {
	return func(e *RedisExporter) {
		if l != nil {
			e.log = l
		}
	}
}

func NewRedisExporter(client RedisWriter, opts ...RedisExporterOption) *RedisExporter {
	e := &RedisExporter{
		client: client,
		prefix: DefaultRedisPrefix,
		log:    logger.NewNop(),
		now:    time.Now,

		versions: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(logger.Component("monitor.redis"))
	return e
}

// SnapshotKey returns the hash key holding the snapshot of machine.
func (e *RedisExporter) SnapshotKey(machine string) string {
	return e.prefix + machine
}

// EventsChannel returns the channel notifications are published on.
func (e *RedisExporter) EventsChannel() string {
	return e.prefix + "events"
}

// Export writes s into its snapshot hash. A snapshot older than the last one written
// for the same machine is skipped and reported with ErrStaleSnapshot.
func (e *RedisExporter) Export(ctx context.Context, s statemachine.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if last, ok := e.versions[s.Name]; ok && s.Version < last {
		return ErrStaleSnapshot
	}

	err := e.client.HSet(ctx, e.SnapshotKey(s.Name),
		"name", s.Name,
		"states", s.States,
		"initial_state", s.InitialState,
		"final_states", s.FinalStates,
		"current_state", s.CurrentState,
		"last_event", s.LastEvent,
		"last_transition", s.LastTransition,
		"final", s.Final,
		"version", s.Version,
	).Err()
	if err != nil {
		return err
	}
	e.versions[s.Name] = s.Version
	return nil
}

func (e *RedisExporter) Observe(ctx context.Context, n statemachine.Notification) {
	switch err := e.Export(ctx, n.Snapshot); {
	case errors.Is(err, ErrStaleSnapshot):
		e.log.DebugContext(ctx, "skipped stale snapshot",
			logger.Machine(n.Machine), slog.Uint64("version", n.Snapshot.Version))
	case err != nil:
		e.log.WarnContext(ctx, "failed to export snapshot",
			logger.Machine(n.Machine), logger.Error(err))
	}

	msg := ExportedNotification{
		Machine:  n.Machine,
		Outcome:  n.Outcome,
		From:     n.From.Name(),
		To:       n.To.Name(),
		Snapshot: n.Snapshot,
		At:       e.now(),
	}
	if n.Event != nil {
		msg.EventKind = string(n.Event.Kind())
	}
	if n.Transition != nil {
		msg.Transition = n.Transition.Name
	}
	if n.Err != nil {
		msg.Error = n.Err.Error()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		e.log.WarnContext(ctx, "failed to encode notification",
			logger.Machine(n.Machine), logger.Error(err))
		return
	}
	if err := e.client.Publish(ctx, e.EventsChannel(), payload).Err(); err != nil {
		e.log.WarnContext(ctx, "failed to publish notification",
			logger.Machine(n.Machine), logger.Error(err))
	}
}
