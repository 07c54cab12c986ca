package state

import (
	"sync"

	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/pkg/logger"
)

// State is the whole application state.
type State struct {
	Auth      AuthSlice                   `json:"auth"`
	Patients  EntitySlice[model.Patient]  `json:"patients"`
	Incidents EntitySlice[model.Incident] `json:"incidents"`
}

// Reduce runs every slice reducer over a.
func Reduce(s State, a Action) State {
	return State{
		Auth:      ReduceAuth(s.Auth, a),
		Patients:  ReduceEntities(s.Patients, a),
		Incidents: ReduceEntities(s.Incidents, a),
	}
}

// Listener is called after every dispatch with the resulting state.
type Listener func(State, Action)

// Store owns the current State and serializes dispatches. Listeners run
// synchronously after the state is updated, outside the store's lock.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
	logger    *logger.Logger
}

func NewStore(log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		state: State{
			Patients:  EntitySlice[model.Patient]{Items: []model.Patient{}},
			Incidents: EntitySlice[model.Incident]{Items: []model.Incident{}},
		},
		listeners: make(map[int]Listener),
		logger:    log,
	}
}

// State returns the current state. Reducers never modify state in place,
// so the returned value stays consistent after later dispatches.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies a and returns the new state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	s.logger.Debug("dispatched", "action", a.Type())
	for _, l := range listeners {
		l(next, a)
	}
	return next
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
