package transcript

import "sync"

// Store serializes every transcript mutation through Reduce.
// Dispatch may be called from any goroutine.
type Store struct {
	mu      sync.Mutex
	state   State
	changed chan struct{}
}

// NewStore creates a store holding the given initial state.
func NewStore(initial State) *Store {
	return &Store{
		state:   initial,
		changed: make(chan struct{}, 1),
	}
}

// Dispatch applies the actions in order as one atomic update and returns
// the resulting state.
func (s *Store) Dispatch(actions ...Action) State {
	s.mu.Lock()
	for _, action := range actions {
		s.state = Reduce(s.state, action)
	}
	state := s.state
	s.mu.Unlock()

	// Coalesce notifications: one pending signal is enough for a reader
	// that always re-reads the latest snapshot.
	select {
	case s.changed <- struct{}{}:
	default:
	}
	return state
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Changed is signalled after every Dispatch. Consecutive dispatches made
// before the reader wakes up collapse into one signal.
func (s *Store) Changed() <-chan struct{} {
	return s.changed
}
