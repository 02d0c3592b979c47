// Package store provides the trackable state object and the subscription
// manager the task core runs against.
//
// A Store is a string-keyed property bag created against a Manager. Writes
// notify the subscribers the Manager holds for that property, plus any
// whole-object subscribers. The Manager implements qwik.SubscriptionManager.
package store

import (
	"sync"

	"github.com/GustavoMelloGit/qwik/pkg/qwik"
)

// Store is a trackable object: a property bag whose writes notify
// subscribers registered through the owning Manager.
type Store struct {
	manager *Manager

	mu     sync.RWMutex
	values map[string]any
}

// New creates a store owned by m with the given initial properties.
func New(m *Manager, initial map[string]any) *Store {
	values := make(map[string]any, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	s := &Store{manager: m, values: values}
	m.registerTarget(s)
	return s
}

// Get returns the current value of prop.
func (s *Store) Get(prop string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[prop]
}

// Peek reads prop without creating a subscription.
// Implements qwik.Trackable; identical to Get since reads on a Store are
// only tracked when they go through a Tracker.
func (s *Store) Peek(prop string) any {
	return s.Get(prop)
}

// Set writes prop and notifies its subscribers. Writing the same value again
// still notifies; the store does not assume values are comparable.
func (s *Store) Set(prop string, value any) {
	s.mu.Lock()
	s.values[prop] = value
	s.mu.Unlock()

	s.manager.notify(s, prop)
}

// Keys returns the property names currently present.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of properties.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

var _ qwik.Trackable = (*Store)(nil)
