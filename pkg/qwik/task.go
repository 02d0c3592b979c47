package qwik

import (
	"sync"
	"sync/atomic"

	"github.com/GustavoMelloGit/qwik/pkg/qrl"
)

var idCounter atomic.Uint64

func nextID() uint64 {
	return idCounter.Add(1)
}

// CleanupFn tears down whatever a task body set up. Returned by task bodies
// and invoked before the next run or at destroy time.
type CleanupFn func()

// Task is the descriptor for one registered effect: a lazily resolvable
// reference to the body, the owning element, a flags bitfield, and the
// call-site index that gives it stable identity across re-renders.
//
// The cleanup func and the in-flight run handle are session-local: they are
// never serialized and exist only while the descriptor lives in this process.
type Task struct {
	id    uint64
	el    *Element
	qrl   *qrl.QRL
	index int

	container *Container

	mu        sync.Mutex
	flags     TaskFlags
	cleanup   CleanupFn
	running   *Run
	destroyed bool
}

// ID returns the unique identifier for this descriptor.
// Implements the Subscriber interface.
func (t *Task) ID() uint64 { return t.id }

// Element returns the owning element.
func (t *Task) Element() *Element { return t.el }

// QRL returns the reference to the registered function.
func (t *Task) QRL() *qrl.QRL { return t.qrl }

// Index returns the descriptor's position among effects on the same element.
func (t *Task) Index() int { return t.index }

// Flags returns a snapshot of the descriptor's flags.
func (t *Task) Flags() TaskFlags {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flags
}

// MarkDirty marks the descriptor as due to run and hands it to the scheduler.
// Implements the Subscriber interface; called by the subscription manager
// when a tracked property changes.
//
// A descriptor is scheduled at most once per dirty cycle: marking an
// already-dirty descriptor is a no-op, and a mutation that lands while a run
// is executing re-dirties it for a future run instead of being lost.
func (t *Task) MarkDirty() {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	already := t.flags.Has(TaskDirty)
	t.flags |= TaskDirty
	t.mu.Unlock()

	if already {
		return
	}
	if t.container != nil {
		t.container.schedule(t)
	}
}

// setCleanup stores the cleanup returned by the latest body run.
func (t *Task) setCleanup(fn CleanupFn) {
	t.mu.Lock()
	t.cleanup = fn
	t.mu.Unlock()
}

// takeCleanup detaches and returns the stored cleanup, if any.
func (t *Task) takeCleanup() CleanupFn {
	t.mu.Lock()
	fn := t.cleanup
	t.cleanup = nil
	t.mu.Unlock()
	return fn
}

// Element is the host element a group of descriptors belongs to. Descriptor
// ownership follows the element: when the element is destroyed, its effect
// list is destroyed with it.
type Element struct {
	id string

	mu  sync.Mutex
	ctx *ElementContext
}

// NewElement creates a host element with the given identifier.
func NewElement(id string) *Element {
	return &Element{id: id}
}

// ID returns the element identifier.
func (el *Element) ID() string { return el.id }

// ElementContext is the per-element effect list plus the sequential-scope
// cursor used to give each registration call site a stable index.
type ElementContext struct {
	// Watches is the ordered effect list. Append-only from registrars.
	Watches []*Task

	seq int
}

// GetContext returns the element's effect context, creating it on first use.
func GetContext(el *Element) *ElementContext {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.contextLocked()
}

func (el *Element) contextLocked() *ElementContext {
	if el.ctx == nil {
		el.ctx = &ElementContext{}
	}
	return el.ctx
}

// StartRender resets the sequential-scope cursor. Call at the beginning of
// each re-evaluation of the element's setup so registration call sites map
// back to their existing descriptors.
func (el *Element) StartRender() {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.contextLocked().seq = 0
}

// declareTask resolves the current call site to its descriptor, creating one
// on first evaluation. The bool reports whether the descriptor was created by
// this call; registration side effects must only happen when it is true.
func (el *Element) declareTask(c *Container, ref *qrl.QRL, flags TaskFlags) (*Task, bool) {
	el.mu.Lock()
	defer el.mu.Unlock()

	ec := el.contextLocked()
	i := ec.seq
	ec.seq++
	if i < len(ec.Watches) {
		return ec.Watches[i], false
	}

	t := &Task{
		id:        nextID(),
		el:        el,
		qrl:       ref,
		index:     i,
		flags:     flags,
		container: c,
	}
	ec.Watches = append(ec.Watches, t)
	return t, true
}

// DestroyElement destroys every descriptor on el and empties its effect list.
// Invoked by the owning element's teardown, not by the scheduler.
func (c *Container) DestroyElement(el *Element) {
	el.mu.Lock()
	ec := el.contextLocked()
	watches := ec.Watches
	ec.Watches = nil
	ec.seq = 0
	el.mu.Unlock()

	for _, t := range watches {
		c.DestroyTask(t)
	}
}

// DestroyTask runs a descriptor's final teardown. A TaskCleanup descriptor's
// registered function is itself the teardown callback and is invoked
// directly; any other descriptor runs its ordinary cleanup once, without
// re-running the body. Destroying a descriptor twice is a no-op.
func (c *Container) DestroyTask(t *Task) {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	t.destroyed = true
	isCleanup := t.flags.Has(TaskCleanup)
	if isCleanup {
		t.flags &^= TaskCleanup
	}
	t.mu.Unlock()

	if isCleanup {
		fn, err := resolveCleanupFn(t.qrl)
		if err != nil {
			c.logger.Error("destroy: cleanup callback unresolvable",
				"task", t.id, "qrl", t.qrl.String(), "error", err)
		} else {
			c.invokeCleanup(t, fn)
		}
	} else {
		c.invokeCleanup(t, t.takeCleanup())
	}

	c.subs.ClearSub(t)
	c.emit(TaskEvent{Kind: EventTaskDestroyed, Task: t})
}
