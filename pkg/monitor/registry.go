package monitor

import (
	"cmp"
	"slices"
	"sync"

	"github.com/dmitrymomot/easystates/pkg/statemachine"
)

// Monitorable is anything that can report a snapshot of itself; *statemachine.Machine
// satisfies it.
type Monitorable interface {
	Name() string
	Snapshot() statemachine.Snapshot
}

// Registry keeps the machines exposed to the console, keyed by name.
type Registry struct {
	mu       sync.RWMutex
	machines map[string]Monitorable
}

func NewRegistry() *Registry {
	return &Registry{machines: make(map[string]Monitorable)}
}

// Register exposes m under its name. A second machine with the same name is rejected.
func (r *Registry) Register(m Monitorable) error {
	if m == nil {
		return ErrNilMachine
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.machines[m.Name()]; ok {
		return ErrAlreadyRegistered
	}
	r.machines[m.Name()] = m
	return nil
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.machines, name)
}

func (r *Registry) Get(name string) (Monitorable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.machines[name]
	return m, ok
}

// Snapshots returns a snapshot of every registered machine ordered by name.
func (r *Registry) Snapshots() []statemachine.Snapshot {
	r.mu.RLock()
	machines := make([]Monitorable, 0, len(r.machines))
	for _, m := range r.machines {
		machines = append(machines, m)
	}
	r.mu.RUnlock()

	out := make([]statemachine.Snapshot, 0, len(machines))
	for _, m := range machines {
		out = append(out, m.Snapshot())
	}
	slices.SortFunc(out, func(a, b statemachine.Snapshot) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}
