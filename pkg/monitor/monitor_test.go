package monitor_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/easystates/pkg/logger"
	"github.com/dmitrymomot/easystates/pkg/monitor"
	"github.com/dmitrymomot/easystates/pkg/statemachine"
)

var (
	locked   = statemachine.NewState("locked")
	unlocked = statemachine.NewState("unlocked")
)

func newTurnstile(t *testing.T, name string, opts ...statemachine.Option) *statemachine.Machine {
	t.Helper()
	m, err := statemachine.Build(statemachine.Definition{
		Name:    name,
		States:  []statemachine.State{locked, unlocked},
		Initial: locked,
		Transitions: []statemachine.Transition{
			{Name: "unlock", Source: locked, Kind: "coin", Target: unlocked},
			{Name: "lock", Source: unlocked, Kind: "push", Target: locked},
		},
	}, opts...)
	require.NoError(t, err)
	return m
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := monitor.NewRegistry()
	b := newTurnstile(t, "b")
	a := newTurnstile(t, "a")

	require.NoError(t, reg.Register(b))
	require.NoError(t, reg.Register(a))
	assert.ErrorIs(t, reg.Register(newTurnstile(t, "a")), monitor.ErrAlreadyRegistered)
	assert.ErrorIs(t, reg.Register(nil), monitor.ErrNilMachine)

	got, ok := reg.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	snaps := reg.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, "a", snaps[0].Name)
	assert.Equal(t, "b", snaps[1].Name)

	reg.Unregister("a")
	_, ok = reg.Get("a")
	assert.False(t, ok)
}

type envelope struct {
	Data  json.RawMessage       `json:"data"`
	Error *monitor.ErrorDetail `json:"error"`
}

func get(t *testing.T, h http.Handler, path string) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHandler(t *testing.T) {
	t.Parallel()

	reg := monitor.NewRegistry()
	m := newTurnstile(t, "gate")
	require.NoError(t, reg.Register(m))
	h := monitor.Handler(reg)

	t.Run("snapshot of a machine that never fired", func(t *testing.T) {
		code, body := get(t, h, "/machines/gate")
		require.Equal(t, http.StatusOK, code)

		var snap statemachine.Snapshot
		require.NoError(t, json.Unmarshal(body.Data, &snap))
		assert.Equal(t, "gate", snap.Name)
		assert.Equal(t, "locked;unlocked;", snap.States)
		assert.Equal(t, "locked", snap.CurrentState)
		assert.Empty(t, snap.LastEvent)
		assert.Empty(t, snap.LastTransition)
	})

	t.Run("list reflects fired events", func(t *testing.T) {
		_, err := m.Fire(context.Background(), statemachine.NewEvent("coin", "coin"))
		require.NoError(t, err)

		code, body := get(t, h, "/machines")
		require.Equal(t, http.StatusOK, code)

		var snaps []statemachine.Snapshot
		require.NoError(t, json.Unmarshal(body.Data, &snaps))
		require.Len(t, snaps, 1)
		assert.Equal(t, "unlocked", snaps[0].CurrentState)
		assert.Contains(t, snaps[0].LastTransition, "name=unlock")
	})

	t.Run("unknown machine", func(t *testing.T) {
		code, body := get(t, h, "/machines/nope")
		assert.Equal(t, http.StatusNotFound, code)
		require.NotNil(t, body.Error)
		assert.Equal(t, "not_found", body.Error.Code)
	})

	t.Run("liveness", func(t *testing.T) {
		code, _ := get(t, h, "/health/live")
		assert.Equal(t, http.StatusOK, code)
	})
}

func TestHandler_Readiness(t *testing.T) {
	t.Parallel()

	reg := monitor.NewRegistry()

	ready := monitor.Handler(reg, monitor.WithReadinessCheck(func(context.Context) error { return nil }, nil))
	code, _ := get(t, ready, "/health/ready")
	assert.Equal(t, http.StatusOK, code)

	notReady := monitor.Handler(reg, monitor.WithReadinessCheck(func(context.Context) error {
		return errors.New("redis down")
	}))
	code, body := get(t, notReady, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "not_ready", body.Error.Code)
}

func TestServer(t *testing.T) {
	t.Parallel()

	reg := monitor.NewRegistry()
	require.NoError(t, reg.Register(newTurnstile(t, "gate")))

	srv := monitor.NewServer(monitor.Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, monitor.Handler(reg)) }()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://%s/machines/gate", srv.Addr()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestServer_ListenError(t *testing.T) {
	t.Parallel()

	srv := monitor.NewServer(monitor.Config{Addr: "256.0.0.1:bad"})
	err := srv.Run(context.Background(), nil)
	assert.ErrorIs(t, err, monitor.ErrStart)
}

type fakeRedis struct {
	mu        sync.Mutex
	hashes    map[string]map[string]any
	published map[string][][]byte
	err       error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		hashes:    make(map[string]map[string]any),
		published: make(map[string][][]byte),
	}
}

func (f *fakeRedis) HSet(_ context.Context, key string, values ...any) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	h, ok := f.hashes[key]
	if !ok {
		h = make(map[string]any)
		f.hashes[key] = h
	}
	for i := 0; i+1 < len(values); i += 2 {
		h[values[i].(string)] = values[i+1]
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.published[channel] = append(f.published[channel], message.([]byte))
	return redis.NewIntResult(1, nil)
}

func TestRedisExporter(t *testing.T) {
	t.Parallel()

	fake := newFakeRedis()
	exporter := monitor.NewRedisExporter(fake, monitor.WithRedisPrefix("test:"))
	m := newTurnstile(t, "gate", statemachine.WithObserver(exporter))

	assert.Equal(t, "test:gate", exporter.SnapshotKey("gate"))
	assert.Equal(t, "test:events", exporter.EventsChannel())

	ctx := context.Background()
	_, err := m.Fire(ctx, statemachine.NewEvent("coin", "coin"))
	require.NoError(t, err)
	_, err = m.Fire(ctx, statemachine.NewEvent("kick", "kick"))
	require.NoError(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()

	hash := fake.hashes["test:gate"]
	require.NotNil(t, hash)
	assert.Equal(t, "unlocked", hash["current_state"])
	assert.Equal(t, "locked", hash["initial_state"])
	assert.Contains(t, hash["last_transition"], "name=unlock")

	msgs := fake.published["test:events"]
	require.Len(t, msgs, 2)

	var first monitor.ExportedNotification
	require.NoError(t, json.Unmarshal(msgs[0], &first))
	assert.Equal(t, "gate", first.Machine)
	assert.Equal(t, statemachine.OutcomeTransitioned, first.Outcome)
	assert.Equal(t, "locked", first.From)
	assert.Equal(t, "unlocked", first.To)
	assert.Equal(t, "coin", first.EventKind)
	assert.Equal(t, "unlock", first.Transition)

	var second monitor.ExportedNotification
	require.NoError(t, json.Unmarshal(msgs[1], &second))
	assert.Equal(t, statemachine.OutcomeUnmatched, second.Outcome)
	assert.Empty(t, second.Transition)
}

func TestRedisExporter_FailuresDoNotReachFire(t *testing.T) {
	t.Parallel()

	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	m := newTurnstile(t, "gate", statemachine.WithObserver(monitor.NewRedisExporter(fake)))

	state, err := m.Fire(context.Background(), statemachine.NewEvent("coin", ""))
	require.NoError(t, err)
	assert.Equal(t, unlocked, state)
}

func TestHandler_RequestID(t *testing.T) {
	t.Parallel()

	h := monitor.Handler(monitor.NewRegistry())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(monitor.RequestIDHeader, "dashboard-42")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "dashboard-42", rec.Header().Get(monitor.RequestIDHeader))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(monitor.RequestIDHeader, "bad id!")
	h.ServeHTTP(rec, req)
	generated := rec.Header().Get(monitor.RequestIDHeader)
	assert.NotEqual(t, "bad id!", generated)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithLevel(slog.LevelDebug),
		logger.WithContextExtractors(monitor.RequestIDExtractor()),
	)
	h := monitor.Handler(monitor.NewRegistry(), monitor.WithHandlerLogger(log))

	req := httptest.NewRequest(http.MethodGet, "/machines", nil)
	req.Header.Set(monitor.RequestIDHeader, "trace-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"request_id":"trace-1"`)
	assert.Contains(t, buf.String(), `"path":"/machines"`)
	assert.Empty(t, monitor.RequestIDFromContext(context.Background()))
}

func TestRedisExporter_DropsOutOfOrderSnapshots(t *testing.T) {
	t.Parallel()

	var notes []statemachine.Notification
	collect := statemachine.ObserverFunc(func(_ context.Context, n statemachine.Notification) {
		notes = append(notes, n)
	})
	m := newTurnstile(t, "gate", statemachine.WithObserver(collect))

	ctx := context.Background()
	_, err := m.Fire(ctx, statemachine.NewEvent("coin", "coin"))
	require.NoError(t, err)
	_, err = m.Fire(ctx, statemachine.NewEvent("push", "push"))
	require.NoError(t, err)
	require.Len(t, notes, 2)

	fake := newFakeRedis()
	exporter := monitor.NewRedisExporter(fake)

	// Second commit delivered before the first, as concurrent Fire calls can do.
	exporter.Observe(ctx, notes[1])
	exporter.Observe(ctx, notes[0])

	fake.mu.Lock()
	hash := fake.hashes[exporter.SnapshotKey("gate")]
	assert.Equal(t, m.Current().Name(), hash["current_state"])
	assert.Equal(t, "locked", hash["current_state"])
	assert.Equal(t, uint64(2), hash["version"])
	assert.Len(t, fake.published[exporter.EventsChannel()], 2, "every notification is still published")
	fake.mu.Unlock()

	assert.ErrorIs(t, exporter.Export(ctx, notes[0].Snapshot), monitor.ErrStaleSnapshot)
	assert.NoError(t, exporter.Export(ctx, notes[1].Snapshot), "re-exporting the latest snapshot is allowed")
}

func TestRedisExporter_FailedWriteDoesNotAdvanceVersion(t *testing.T) {
	t.Parallel()

	fake := newFakeRedis()
	exporter := monitor.NewRedisExporter(fake)
	ctx := context.Background()

	fake.err = errors.New("connection reset")
	require.Error(t, exporter.Export(ctx, statemachine.Snapshot{Name: "gate", CurrentState: "unlocked", Version: 5}))

	fake.mu.Lock()
	fake.err = nil
	fake.mu.Unlock()

	require.NoError(t, exporter.Export(ctx, statemachine.Snapshot{Name: "gate", CurrentState: "locked", Version: 3}))
	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, "locked", fake.hashes[exporter.SnapshotKey("gate")]["current_state"])
}

func TestServer_ShutdownBeforeRun(t *testing.T) {
	t.Parallel()

	srv := monitor.NewServer(monitor.Config{Addr: "127.0.0.1:0"})
	require.NoError(t, srv.Shutdown(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, monitor.Handler(monitor.NewRegistry())) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept serving after Shutdown")
	}
	assert.Nil(t, srv.Addr())
	assert.NoError(t, srv.Shutdown(context.Background()))
}
