package qwik

import (
	"io"
	"log/slog"
	"sync"

	"github.com/GustavoMelloGit/qwik/pkg/platform"
	"github.com/GustavoMelloGit/qwik/pkg/qrl"
)

// fakeState is a minimal trackable used by the core tests.
type fakeState struct {
	mu    sync.Mutex
	props map[string]any
}

func newFakeState(props map[string]any) *fakeState {
	if props == nil {
		props = map[string]any{}
	}
	return &fakeState{props: props}
}

func (f *fakeState) Peek(prop string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.props[prop]
}

func (f *fakeState) set(prop string, v any) {
	f.mu.Lock()
	f.props[prop] = v
	f.mu.Unlock()
}

type subEdge struct {
	state *fakeState
	sub   uint64
	prop  string
}

// fakeSubs is an in-memory SubscriptionManager over fakeState targets.
type fakeSubs struct {
	mu     sync.Mutex
	states map[*fakeState]struct{}
	edges  map[subEdge]Subscriber
}

func newFakeSubs(states ...*fakeState) *fakeSubs {
	f := &fakeSubs{
		states: make(map[*fakeState]struct{}),
		edges:  make(map[subEdge]Subscriber),
	}
	for _, s := range states {
		f.states[s] = struct{}{}
	}
	return f
}

func (f *fakeSubs) Target(obj any) (Trackable, bool) {
	s, ok := obj.(*fakeState)
	if !ok {
		return nil, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.states[s]; !ok {
		return nil, false
	}
	return s, true
}

func (f *fakeSubs) AddSub(target Trackable, sub Subscriber, prop string) {
	s, ok := target.(*fakeState)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edges[subEdge{state: s, sub: sub.ID(), prop: prop}] = sub
}

func (f *fakeSubs) ClearSub(sub Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for edge := range f.edges {
		if edge.sub == sub.ID() {
			delete(f.edges, edge)
		}
	}
}

func (f *fakeSubs) has(state *fakeState, sub Subscriber, prop string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.edges[subEdge{state: state, sub: sub.ID(), prop: prop}]
	return ok
}

func (f *fakeSubs) count(sub Subscriber) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for edge := range f.edges {
		if edge.sub == sub.ID() {
			n++
		}
	}
	return n
}

// notify marks every subscriber of (state, prop) dirty, including
// whole-object subscribers.
func (f *fakeSubs) notify(state *fakeState, prop string) {
	f.mu.Lock()
	var subs []Subscriber
	for edge, sub := range f.edges {
		if edge.state == state && (edge.prop == prop || edge.prop == "") {
			subs = append(subs, sub)
		}
	}
	f.mu.Unlock()

	for _, sub := range subs {
		sub.MarkDirty()
	}
}

// fakeScheduler records scheduled descriptors.
type fakeScheduler struct {
	mu    sync.Mutex
	tasks []*Task
}

func (f *fakeScheduler) ScheduleTask(t *Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
}

func (f *fakeScheduler) scheduled() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

// fakeHooks records trigger registrations.
type fakeHooks struct {
	mu        sync.Mutex
	onLoad    []*qrl.QRL
	onVisible map[*Element][]*qrl.QRL
}

func newFakeHooks() *fakeHooks {
	return &fakeHooks{onVisible: make(map[*Element][]*qrl.QRL)}
}

func (f *fakeHooks) RegisterOnLoad(ref *qrl.QRL) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onLoad = append(f.onLoad, ref)
}

func (f *fakeHooks) RegisterOnVisible(el *Element, ref *qrl.QRL) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onVisible[el] = append(f.onVisible[el], ref)
}

func (f *fakeHooks) loadRefs() []*qrl.QRL {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*qrl.QRL(nil), f.onLoad...)
}

func (f *fakeHooks) visibleRefs(el *Element) []*qrl.QRL {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*qrl.QRL(nil), f.onVisible[el]...)
}

// eventRecorder captures observer callbacks.
type eventRecorder struct {
	mu     sync.Mutex
	events []TaskEvent
}

func (e *eventRecorder) record(ev TaskEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *eventRecorder) kinds() []TaskEventKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	kinds := make([]TaskEventKind, len(e.events))
	for i, ev := range e.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

func (e *eventRecorder) countKind(k TaskEventKind) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev.Kind == k {
			n++
		}
	}
	return n
}

type env struct {
	subs   *fakeSubs
	sched  *fakeScheduler
	hooks  *fakeHooks
	events *eventRecorder
	c      *Container
	el     *Element
	ic     *InvokeContext
}

func newEnv(p platform.Platform, states ...*fakeState) *env {
	subs := newFakeSubs(states...)
	sched := &fakeScheduler{}
	hooks := newFakeHooks()
	events := &eventRecorder{}

	c := NewContainer(ContainerConfig{
		Subs:      subs,
		Platform:  p,
		Scheduler: sched,
		Hooks:     hooks,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Observer:  events.record,
	})

	el := NewElement("test-el")
	el.StartRender()

	return &env{
		subs:   subs,
		sched:  sched,
		hooks:  hooks,
		events: events,
		c:      c,
		el:     el,
		ic:     NewInvokeContext(c, el),
	}
}
