package session

import "sync"

// Store is the sole owner of the persisted credential and the in-memory
// lifecycle state. It holds no validation logic; the Controller decides
// every transition.
type Store struct {
	vault Vault

	mu      sync.Mutex
	snap    Snapshot
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewStore creates a Store in the unknown phase, backed by the given vault.
func NewStore(vault Vault) *Store {
	return &Store{
		vault: vault,
		snap:  Snapshot{Phase: PhaseUnknown},
		subs:  make(map[int]func(Snapshot)),
	}
}

// PersistedCredential reads the token from durable storage. Pure read,
// no network. Returns ErrNoCredential when the slot is empty.
func (s *Store) PersistedCredential() (string, error) {
	return s.vault.Load()
}

// PersistCredential overwrites durable storage with the given token.
func (s *Store) PersistCredential(token string) error {
	return s.vault.Save(token)
}

// ClearCredential removes the token from durable storage. Calling it
// when nothing is stored is not an error.
func (s *Store) ClearCredential() error {
	return s.vault.Clear()
}

// State returns the current lifecycle snapshot.
func (s *Store) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// SetState replaces the lifecycle snapshot and notifies subscribers.
func (s *Store) SetState(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	observers := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	// Subscribers run outside the lock so they may read the store.
	for _, fn := range observers {
		fn(snap)
	}
}

// Subscribe registers an observer for state changes and returns a
// cancellation func. The observer is not called with the current state.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
