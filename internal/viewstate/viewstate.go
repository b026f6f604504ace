// Package viewstate holds what a manager exposes to its clients: a loading
// flag, the last error message and the current data.
//
// Loads take a generation token from Begin. When a newer load has started,
// Publish and Fail for the older token are ignored, so a slow load can never
// overwrite fresher state.
package viewstate

import "sync"

type Snapshot[T any] struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	Data    T      `json:"data"`
}

type State[T any] struct {
	mu      sync.RWMutex
	loading bool
	err     string
	data    T
	gen     uint64
}

func New[T any](initial T) *State[T] {
	return &State[T]{data: initial}
}

// Begin starts a load and returns its token.
func (s *State[T]) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.loading = true
	s.err = ""
	return s.gen
}

// Start marks a non-load operation as running without invalidating loads
// in flight.
func (s *State[T]) Start() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

// Current reports whether token still belongs to the latest load.
func (s *State[T]) Current(token uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return token == s.gen
}

// Publish stores the result of the load identified by token.
func (s *State[T]) Publish(token uint64, data T) bool {
	return s.PublishWithWarning(token, data, "")
}

// PublishWithWarning stores data and leaves a message describing a partial
// failure.
func (s *State[T]) PublishWithWarning(token uint64, data T, warning string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.gen {
		return false
	}
	s.data = data
	s.loading = false
	s.err = warning
	return true
}

// Fail records the failure of the load identified by token.
func (s *State[T]) Fail(token uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.gen {
		return false
	}
	s.loading = false
	s.err = err.Error()
	return true
}

// Finish ends a Start-ed operation; a nil err keeps the error cleared.
func (s *State[T]) Finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = err.Error()
	}
}

// SetError records err without touching the loading flag.
func (s *State[T]) SetError(err error) {
	s.mu.Lock()
	s.err = err.Error()
	s.mu.Unlock()
}

// Mutate replaces the data with fn's result.
func (s *State[T]) Mutate(fn func(T) T) {
	s.mu.Lock()
	s.data = fn(s.data)
	s.mu.Unlock()
}

// Reset sets data outright, clears the error and ends any loading. Loads
// in flight are invalidated.
func (s *State[T]) Reset(data T) {
	s.mu.Lock()
	s.gen++
	s.data = data
	s.loading = false
	s.err = ""
	s.mu.Unlock()
}

func (s *State[T]) Data() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

func (s *State[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot[T]{Loading: s.loading, Error: s.err, Data: s.data}
}
