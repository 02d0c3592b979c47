package qwik

import (
	"context"

	"github.com/GustavoMelloGit/qwik/pkg/qrl"
)

// InvokeContext is the parameter bundle a component's setup code runs with:
// the container, the host element being set up, and the trigger that caused
// this invocation. It is passed explicitly rather than held in ambient state.
type InvokeContext struct {
	Container *Container
	Element   *Element

	// Trigger names the external condition that caused this invocation,
	// e.g. "load" or "visible". Empty for the initial setup.
	Trigger string
}

// NewInvokeContext builds an invocation context for setting up el within c.
func NewInvokeContext(c *Container, el *Element) *InvokeContext {
	return &InvokeContext{Container: c, Element: el}
}

// TaskOption configures a task registration.
type TaskOption interface {
	applyTask(*taskOptions)
}

type taskOptions struct {
	eagerness Eagerness
}

type taskOptionFunc func(*taskOptions)

func (f taskOptionFunc) applyTask(o *taskOptions) { f(o) }

// WithEagerness selects the run-trigger wired for the registration.
func WithEagerness(e Eagerness) TaskOption {
	return taskOptionFunc(func(o *taskOptions) {
		o.eagerness = e
	})
}

func buildTaskOptions(def Eagerness, opts []TaskOption) taskOptions {
	o := taskOptions{eagerness: def}
	for _, opt := range opts {
		opt.applyTask(&o)
	}
	return o
}

// UseTask registers a tracked watch: the body runs after setup completes,
// re-runs whenever a property it tracked changes, and never blocks setup.
//
// On the server the watch is additionally wired to the run-trigger given via
// WithEagerness, so the client can re-invoke it after resuming.
//
// Re-entering the same call site returns the existing descriptor; the
// registration side effects happen exactly once.
func UseTask(ic *InvokeContext, ref *qrl.QRL, opts ...TaskOption) *Task {
	o := buildTaskOptions(EagernessNone, opts)
	c := ic.Container

	t, created := ic.Element.declareTask(c, ref, TaskDirty|TaskWatch)
	if !created {
		return t
	}

	c.schedule(t)
	if c.platform.IsServer() {
		c.registerTrigger(t, o.eagerness)
	}
	return t
}

// UseVisibleTask registers a client effect. It is registered in both
// environments, but execution is gated on its run-trigger firing
// (default: when the host element becomes visible).
func UseVisibleTask(ic *InvokeContext, ref *qrl.QRL, opts ...TaskOption) *Task {
	o := buildTaskOptions(EagernessVisible, opts)
	c := ic.Container

	t, created := ic.Element.declareTask(c, ref, TaskDirty|TaskEffect)
	if !created {
		return t
	}

	c.registerTrigger(t, o.eagerness)
	return t
}

// UseMount registers a one-shot body that runs in both environments.
// Its completion is awaited as part of setup; an error fails setup.
func UseMount(ctx context.Context, ic *InvokeContext, ref *qrl.QRL) (*Task, error) {
	return useMount(ctx, ic, ref, true)
}

// UseServerMount is UseMount gated to the one-shot server render. On the
// client the descriptor still occupies its call-site slot, but the body is
// never invoked.
func UseServerMount(ctx context.Context, ic *InvokeContext, ref *qrl.QRL) (*Task, error) {
	return useMount(ctx, ic, ref, ic.Container.platform.IsServer())
}

// UseClientMount is UseMount gated to the long-lived client environment.
func UseClientMount(ctx context.Context, ic *InvokeContext, ref *qrl.QRL) (*Task, error) {
	return useMount(ctx, ic, ref, ic.Container.platform.IsClient())
}

func useMount(ctx context.Context, ic *InvokeContext, ref *qrl.QRL, invoke bool) (*Task, error) {
	c := ic.Container

	t, created := ic.Element.declareTask(c, ref, 0)
	if !created || !invoke {
		return t, nil
	}
	return t, c.runMount(ctx, t)
}

// UseCleanup registers a bare teardown callback to run when the host element
// is destroyed. The callback is not a trackable body: it is invoked directly
// by the destroy path, once.
func UseCleanup(ic *InvokeContext, ref *qrl.QRL) *Task {
	t, _ := ic.Element.declareTask(ic.Container, ref, TaskCleanup)
	return t
}
