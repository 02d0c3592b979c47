package qwik

import (
	"context"
	"fmt"
	"time"

	"github.com/GustavoMelloGit/qwik/pkg/qrl"
)

// TaskFn is the body of a tracked watch or client effect. It receives the
// Tracker that converts its property reads into subscriptions, and may return
// a cleanup to run before the next body invocation or at destroy time.
type TaskFn func(ctx context.Context, track Tracker) (CleanupFn, error)

// MountFn is the body of a mount-style registration. Its completion is
// awaited as part of component setup.
type MountFn func(ctx context.Context) error

// Run is the handle for one in-flight execution of a descriptor.
type Run struct {
	task *Task
	done chan struct{}
	err  error
}

func newRun(t *Task) *Run {
	return &Run{task: t, done: make(chan struct{})}
}

func completedRun(t *Task) *Run {
	r := newRun(t)
	close(r.done)
	return r
}

// Task returns the descriptor this run belongs to.
func (r *Run) Task() *Task { return r.task }

// Done is closed when the run settles, successfully or not.
func (r *Run) Done() <-chan struct{} { return r.done }

// Err returns the body's error. Only valid after Done is closed.
func (r *Run) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Wait blocks until the run settles or ctx is canceled.
func (r *Run) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunSubscriber executes one dirty descriptor: it awaits the previous run of
// the same descriptor, runs the stored cleanup, replaces the descriptor's
// subscriptions with the ones the body reads on this run, and stores any
// returned cleanup for next time.
//
// Calling it on a descriptor that is not dirty is a free no-op, so a
// scheduler may invoke it speculatively. The dirty flag is cleared before
// this call returns: a tracked write landing after that point re-dirties the
// descriptor for a future run rather than being absorbed into this one.
//
// Runs of the same descriptor are strictly serialized. A prior run that
// failed counts as settled; it delays nothing and blocks nothing.
func (c *Container) RunSubscriber(ctx context.Context, t *Task) *Run {
	t.mu.Lock()
	if t.destroyed || !t.flags.Has(TaskDirty) {
		t.mu.Unlock()
		return completedRun(t)
	}
	t.flags &^= TaskDirty
	prev := t.running
	r := newRun(t)
	t.running = r
	t.mu.Unlock()

	go c.executeTask(ctx, t, prev, r)
	return r
}

func (c *Container) executeTask(ctx context.Context, t *Task, prev, r *Run) {
	defer close(r.done)

	if prev != nil {
		select {
		case <-prev.done:
		case <-ctx.Done():
			r.err = ctx.Err()
			return
		}
	}

	c.invokeCleanup(t, t.takeCleanup())
	c.subs.ClearSub(t)

	fn, err := resolveTaskFn(t.qrl)
	if err != nil {
		r.err = err
		c.logger.Error("task body unresolvable", "task", t.id, "qrl", t.qrl.String(), "error", err)
		return
	}

	start := time.Now()
	cleanup, err := fn(ctx, c.newTracker(t))
	elapsed := time.Since(start)

	if cleanup != nil {
		t.setCleanup(cleanup)
	}
	r.err = err

	if err != nil {
		c.logger.Error("task run failed", "task", t.id, "element", t.el.ID(), "error", err)
	} else {
		c.logger.Debug("task ran", "task", t.id, "element", t.el.ID(), "elapsed", elapsed)
	}
	c.emit(TaskEvent{Kind: EventTaskRun, Task: t, Elapsed: elapsed, Err: err})
}

// runMount invokes a mount descriptor's body once, synchronously. The error
// propagates to whatever awaits component setup.
func (c *Container) runMount(ctx context.Context, t *Task) error {
	fn, err := resolveMountFn(t.qrl)
	if err != nil {
		return err
	}

	start := time.Now()
	err = fn(ctx)
	elapsed := time.Since(start)

	c.emit(TaskEvent{Kind: EventMountRun, Task: t, Elapsed: elapsed, Err: err})
	return err
}

// invokeCleanup runs a cleanup with panic recovery. A failing cleanup is
// logged and suppressed; it must never block the run that follows it.
func (c *Container) invokeCleanup(t *Task, fn CleanupFn) {
	if fn == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("task cleanup panicked", "task", t.id, "element", t.el.ID(), "panic", rec)
			c.emit(TaskEvent{Kind: EventCleanupError, Task: t, Err: fmt.Errorf("cleanup panic: %v", rec)})
		}
	}()
	fn()
}

func resolveTaskFn(ref *qrl.QRL) (TaskFn, error) {
	v, err := ref.Resolve()
	if err != nil {
		return nil, err
	}
	switch fn := v.(type) {
	case TaskFn:
		return fn, nil
	case func(ctx context.Context, track Tracker) (CleanupFn, error):
		return fn, nil
	default:
		return nil, fmt.Errorf("qrl %s resolved to %T, want TaskFn", ref, v)
	}
}

func resolveMountFn(ref *qrl.QRL) (MountFn, error) {
	v, err := ref.Resolve()
	if err != nil {
		return nil, err
	}
	switch fn := v.(type) {
	case MountFn:
		return fn, nil
	case func(ctx context.Context) error:
		return fn, nil
	default:
		return nil, fmt.Errorf("qrl %s resolved to %T, want MountFn", ref, v)
	}
}

func resolveCleanupFn(ref *qrl.QRL) (CleanupFn, error) {
	v, err := ref.Resolve()
	if err != nil {
		return nil, err
	}
	switch fn := v.(type) {
	case CleanupFn:
		return fn, nil
	case func():
		return fn, nil
	default:
		return nil, fmt.Errorf("qrl %s resolved to %T, want CleanupFn", ref, v)
	}
}
