// Package store owns the current snapshot reference. All writes funnel
// through Update, which serializes update application in arrival order;
// readers grab the current pointer lock-free and always see a fully formed
// snapshot.
package store

import (
	"sync"
	"sync/atomic"

	"chatsync/internal/state"
)

// Listener is invoked after every committed snapshot replace.
type Listener func(*state.Snapshot)

type Store struct {
	snapshot atomic.Pointer[state.Snapshot]

	writeMu sync.Mutex

	subMu     sync.RWMutex
	listeners map[int]Listener
	nextSubID int
}

func New(initial *state.Snapshot) *Store {
	s := &Store{listeners: map[int]Listener{}}
	s.snapshot.Store(initial)
	return s
}

// Current returns the latest committed snapshot.
func (s *Store) Current() *state.Snapshot {
	return s.snapshot.Load()
}

// Update applies fn to the current snapshot and commits the result.
// Returning the same reference is a no-op: nothing is stored and listeners
// are not notified. Updates are serialized, so fn always sees the exact
// post-state of every earlier update.
func (s *Store) Update(fn func(*state.Snapshot) *state.Snapshot) *state.Snapshot {
	s.writeMu.Lock()
	current := s.snapshot.Load()
	next := fn(current)
	if next == nil || next == current {
		s.writeMu.Unlock()
		return current
	}
	s.snapshot.Store(next)
	s.writeMu.Unlock()

	s.notify(next)
	return next
}

// Subscribe registers a commit listener and returns an unsubscribe func.
func (s *Store) Subscribe(l Listener) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = l
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.listeners, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(snap *state.Snapshot) {
	s.subMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.subMu.RUnlock()

	for _, l := range listeners {
		l(snap)
	}
}
