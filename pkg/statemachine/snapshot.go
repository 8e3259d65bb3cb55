package statemachine

// Snapshot is a point-in-time, read-only view of a machine for monitoring.
// LastEvent and LastTransition are empty until the machine takes its first transition.
// Version counts committed transitions, so of two snapshots of the same machine the one
// with the higher Version is the more recent.
type Snapshot struct {
	Name           string `json:"name"`
	States         string `json:"states"`
	InitialState   string `json:"initial_state"`
	FinalStates    string `json:"final_states"`
	CurrentState   string `json:"current_state"`
	LastEvent      string `json:"last_event,omitempty"`
	LastTransition string `json:"last_transition,omitempty"`
	Final          bool   `json:"final"`
	Version        uint64 `json:"version"`
}

// snapshotLocked must be called with m.mu held.
func (m *Machine) snapshotLocked() Snapshot {
	s := Snapshot{
		Name:         m.name,
		States:       DumpStates(m.states),
		InitialState: m.initial.Name(),
		FinalStates:  DumpStates(m.finals),
		CurrentState: m.current.Name(),
		LastEvent:    describeEvent(m.lastEvent),
		Final:        m.isFinalLocked(),
		Version:      m.version,
	}
	if m.lastTransition != nil {
		s.LastTransition = m.lastTransition.String()
	}
	return s
}
