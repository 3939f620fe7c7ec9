package state

import (
	"sync"
	"sync/atomic"
)

// State is one complete snapshot of UI state, keyed by string.
// Values are opaque to the store; nested structures are replaced
// wholesale on merge, never merged recursively.
type State map[string]any

// Listener receives the full post-merge snapshot after every update.
type Listener func(State)

// Clone returns a shallow copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge returns a new snapshot with partial's keys merged over s.
// One level deep: overlapping keys take the incoming value.
func (s State) Merge(partial State) State {
	out := s.Clone()
	for k, v := range partial {
		out[k] = v
	}
	return out
}

// registration pairs a listener with a unique identity so the same
// function can be registered more than once and removed precisely.
type registration struct {
	id uint64
	fn Listener
}

// Store is the single source of truth for a shared slice of UI state.
// It accepts partial updates, merges them shallowly, and synchronously
// notifies every subscriber with the new full snapshot.
type Store struct {
	// mu protects current and subs.
	mu sync.RWMutex

	// current is the live snapshot. Never handed out directly.
	current State

	// subs are the registered listeners. Removal swaps with the last
	// element, so notification order is unspecified.
	subs []registration
}

// regCounter generates registration identities across all stores.
var regCounter atomic.Uint64

// NewStore creates a store seeded with the given initial snapshot.
// The initial map is copied; the caller keeps ownership of its argument.
func NewStore(initial State) *Store {
	return &Store{current: initial.Clone()}
}

// GetState returns a copy of the current snapshot. Mutating the returned
// map does not affect the store.
func (s *Store) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Get returns a single value from the current snapshot.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.current[key]
	return v, ok
}

// SetState merges partial into the current snapshot one level deep and
// notifies every subscriber with the new full snapshot. Notification
// always fires, even when the merge changed no values.
//
// Fan-out is synchronous: SetState returns only after every subscriber
// has run. A subscriber calling SetState again recurses; see the package
// doc for the re-entrancy hazard.
func (s *Store) SetState(partial State) {
	s.mu.Lock()
	s.current = s.current.Merge(partial)
	snapshot := s.current.Clone()
	// Copy-before-notify: listeners run without the lock held, so they
	// may subscribe, unsubscribe, or update the store re-entrantly.
	subs := make([]registration, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, reg := range subs {
		reg.fn(snapshot)
	}
}

// Subscribe registers a listener and returns its unsubscribe capability.
// The same function may be registered multiple times; each registration
// fires independently and each capability removes exactly its own
// registration. Calling the capability more than once is a no-op.
func (s *Store) Subscribe(fn Listener) func() {
	id := regCounter.Add(1)

	s.mu.Lock()
	s.subs = append(s.subs, registration{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, reg := range s.subs {
			if reg.id == id {
				s.subs[i] = s.subs[len(s.subs)-1]
				s.subs = s.subs[:len(s.subs)-1]
				return
			}
		}
	}
}

// SubscriberCount reports the number of live registrations.
func (s *Store) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
