package qwik

import (
	"context"
	"fmt"

	"github.com/GustavoMelloGit/qwik/pkg/qrl"
)

// Eagerness names the external condition that schedules a deferred run.
type Eagerness string

const (
	// EagernessNone registers no secondary trigger; only the initial dirty
	// run applies.
	EagernessNone Eagerness = ""

	// EagernessLoad wires the descriptor into the resume-on-load mechanism.
	EagernessLoad Eagerness = "load"

	// EagernessVisible wires the descriptor into visibility observation.
	EagernessVisible Eagerness = "visible"
)

// runWatchSymbol is the fixed entry point symbol trigger references bind to.
const runWatchSymbol = "_hW"

// WatchEntry is the fixed "run this watch" entry point a trigger reference
// resolves to.
type WatchEntry func(ctx context.Context, t *Task) *Run

// registerTrigger wires t into the external scheduling hook for e. The
// descriptor's body reference is wrapped in a synthetic reference that
// re-enters the runner with the captured descriptor, so the trigger can fire
// without resolving the original body's location ahead of time.
func (c *Container) registerTrigger(t *Task, e Eagerness) {
	if e == EagernessNone || c.hooks == nil {
		return
	}

	ref := qrl.FromFunc(runWatchSymbol, WatchEntry(c.RunSubscriber), t)

	switch e {
	case EagernessLoad:
		c.hooks.RegisterOnLoad(ref)
	case EagernessVisible:
		c.hooks.RegisterOnVisible(t.el, ref)
	default:
		c.logger.Warn("unknown eagerness ignored", "eagerness", string(e), "task", t.id)
	}
}

// InvokeWatchQRL invokes a trigger reference produced by registerTrigger:
// it resolves the fixed entry point and calls it with the captured
// descriptor. Trigger hook implementations call this when their condition
// fires.
func InvokeWatchQRL(ctx context.Context, ref *qrl.QRL) (*Run, error) {
	v, err := ref.Resolve()
	if err != nil {
		return nil, err
	}
	entry, ok := v.(WatchEntry)
	if !ok {
		return nil, fmt.Errorf("qrl %s resolved to %T, want WatchEntry", ref, v)
	}

	captured := ref.Captured()
	if len(captured) != 1 {
		return nil, fmt.Errorf("qrl %s captures %d values, want the descriptor", ref, len(captured))
	}
	t, ok := captured[0].(*Task)
	if !ok {
		return nil, fmt.Errorf("qrl %s captured %T, want *Task", ref, captured[0])
	}

	return entry(ctx, t), nil
}
