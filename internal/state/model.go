package state

import "sync"

// Model is the single ViewState instance of a session. One goroutine writes
// through Update; any goroutine may read a copy with Snapshot.
type Model struct {
	mu     sync.RWMutex
	state  ViewState
	subs   map[int]func(ViewState)
	nextID int
}

// NewModel creates a Model with zeroed defaults.
func NewModel() *Model {
	return &Model{subs: make(map[int]func(ViewState))}
}

// Snapshot returns a copy of the current state.
func (m *Model) Snapshot() ViewState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Update applies r and notifies subscribers with the resulting state.
// Subscribers run on the caller's goroutine, after the lock is released.
func (m *Model) Update(r Reducer) ViewState {
	m.mu.Lock()
	m.state = r(m.state)
	next := m.state
	subs := make([]func(ViewState), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Subscribe registers fn to be called after every Update. The returned
// function removes the subscription.
func (m *Model) Subscribe(fn func(ViewState)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}
