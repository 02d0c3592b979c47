package store

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/GustavoMelloGit/qwik/pkg/qwik"
)

// wholeObject is the property key for subscriptions to a target as a whole.
const wholeObject = ""

// local indexes the subscribers of one target, per property.
type local struct {
	mu sync.Mutex

	// subs maps property name (or wholeObject) to the subscriber set.
	subs map[string]mapset.Set[qwik.Subscriber]
}

func newLocal() *local {
	return &local{subs: make(map[string]mapset.Set[qwik.Subscriber])}
}

func (l *local) add(sub qwik.Subscriber, prop string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	set, ok := l.subs[prop]
	if !ok {
		set = mapset.NewSet[qwik.Subscriber]()
		l.subs[prop] = set
	}
	set.Add(sub)
}

func (l *local) remove(sub qwik.Subscriber) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, set := range l.subs {
		set.Remove(sub)
	}
}

// collect returns the subscribers to notify for a write to prop: the
// property-scoped set plus the whole-object set, deduplicated.
func (l *local) collect(prop string) []qwik.Subscriber {
	l.mu.Lock()
	defer l.mu.Unlock()

	notify := mapset.NewSet[qwik.Subscriber]()
	if set, ok := l.subs[prop]; ok {
		notify = notify.Union(set)
	}
	if set, ok := l.subs[wholeObject]; ok {
		notify = notify.Union(set)
	}
	return notify.ToSlice()
}

// Manager stores (target, property) → subscriber relations for every store
// in one container. It implements qwik.SubscriptionManager.
type Manager struct {
	mu     sync.Mutex
	locals map[*Store]*local
}

// NewManager creates an empty subscription manager.
func NewManager() *Manager {
	return &Manager{locals: make(map[*Store]*local)}
}

func (m *Manager) registerTarget(s *Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.locals[s]; !ok {
		m.locals[s] = newLocal()
	}
}

// Target returns the trackable behind obj. Only stores created against this
// manager are trackable.
func (m *Manager) Target(obj any) (qwik.Trackable, bool) {
	s, ok := obj.(*Store)
	if !ok {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.locals[s]; !ok {
		return nil, false
	}
	return s, true
}

// AddSub subscribes sub to target. An empty prop subscribes to the object as
// a whole. Safe to call repeatedly with the same subscriber.
func (m *Manager) AddSub(target qwik.Trackable, sub qwik.Subscriber, prop string) {
	s, ok := target.(*Store)
	if !ok {
		return
	}

	m.mu.Lock()
	l, ok := m.locals[s]
	m.mu.Unlock()
	if !ok {
		return
	}
	l.add(sub, prop)
}

// ClearSub removes every subscription held by sub, across all targets.
func (m *Manager) ClearSub(sub qwik.Subscriber) {
	m.mu.Lock()
	locals := make([]*local, 0, len(m.locals))
	for _, l := range m.locals {
		locals = append(locals, l)
	}
	m.mu.Unlock()

	for _, l := range locals {
		l.remove(sub)
	}
}

// notify marks every subscriber of (s, prop) dirty. Subscribers are
// collected before notification so a MarkDirty that re-subscribes cannot
// deadlock against the manager's locks.
func (m *Manager) notify(s *Store, prop string) {
	m.mu.Lock()
	l, ok := m.locals[s]
	m.mu.Unlock()
	if !ok {
		return
	}

	for _, sub := range l.collect(prop) {
		sub.MarkDirty()
	}
}

var _ qwik.SubscriptionManager = (*Manager)(nil)
