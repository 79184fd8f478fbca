package auth

import (
	"sync"

	"github.com/jrsteele09/varix-web/sessions"
)

// Store owns the current auth State. All writes go through Dispatch or
// restore, and subscribers are notified after every write, outside the lock.
type Store struct {
	mu          sync.Mutex
	state       State
	dispatched  uint64
	subscribers map[int]func(State)
	nextID      int
}

// NewStore returns a store in the loading state.
func NewStore() *Store {
	return &Store{
		state:       State{Loading: true},
		subscribers: make(map[int]func(State)),
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for state changes and returns its cancel function.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// Dispatch reduces ev into the state and returns the effect the caller
// must carry out.
func (s *Store) Dispatch(ev Event, loc Location) Effect {
	s.mu.Lock()
	next, effect := Reduce(s.state, ev, loc)
	s.state = next
	s.dispatched++
	s.mu.Unlock()

	s.notify(next)
	return effect
}

// mark returns the number of events dispatched so far.
func (s *Store) mark() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatched
}

// restore records the bootstrap result and ends loading. The session is
// only applied when no event was dispatched since mark was taken; once
// notifications start they are the only source of truth.
func (s *Store) restore(session *sessions.Session, mark uint64) {
	s.mu.Lock()
	if s.dispatched == mark {
		s.state.Session = session
	}
	s.state.Loading = false
	next := s.state
	s.mu.Unlock()

	s.notify(next)
}

func (s *Store) finishLoading() {
	s.mu.Lock()
	if !s.state.Loading {
		s.mu.Unlock()
		return
	}
	s.state.Loading = false
	next := s.state
	s.mu.Unlock()

	s.notify(next)
}

func (s *Store) notify(state State) {
	s.mu.Lock()
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
