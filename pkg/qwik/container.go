package qwik

import (
	"log/slog"
	"time"

	"github.com/GustavoMelloGit/qwik/pkg/platform"
	"github.com/GustavoMelloGit/qwik/pkg/qrl"
)

// Subscriber is anything that can be notified when a tracked property it
// subscribed to changes. Task implements it.
type Subscriber interface {
	ID() uint64
	MarkDirty()
}

// Trackable is a proxied state object whose property reads can be converted
// into subscriptions by a Tracker.
type Trackable interface {
	// Peek reads a property without creating a subscription.
	Peek(prop string) any
}

// SubscriptionManager stores dependency edges between trackable objects and
// subscribers. It is shared by every descriptor in a container; the core only
// ever clears its own descriptor's entries.
type SubscriptionManager interface {
	// Target returns the trackable behind obj, or false if obj is not a
	// proxied/trackable object.
	Target(obj any) (Trackable, bool)

	// AddSub subscribes sub to target. An empty prop subscribes to the
	// object as a whole (any property change notifies). Repeated calls
	// with the same (target, sub, prop) are idempotent.
	AddSub(target Trackable, sub Subscriber, prop string)

	// ClearSub removes every subscription held by sub.
	ClearSub(sub Subscriber)
}

// TaskScheduler decides when dirty descriptors actually execute. The default
// implementation lives in pkg/scheduler; a nil scheduler means the caller
// drives RunSubscriber directly.
type TaskScheduler interface {
	ScheduleTask(t *Task)
}

// TriggerHooks registers deferred re-invocations with the surrounding
// scheduling machinery. The refs passed in re-enter the runner when invoked;
// see InvokeWatchQRL.
type TriggerHooks interface {
	RegisterOnLoad(ref *qrl.QRL)
	RegisterOnVisible(el *Element, ref *qrl.QRL)
}

// TaskEventKind identifies a task lifecycle event.
type TaskEventKind uint8

const (
	EventTaskRun TaskEventKind = iota + 1
	EventMountRun
	EventCleanupError
	EventTaskDestroyed
)

// String returns the event kind name used in logs and the debug stream.
func (k TaskEventKind) String() string {
	switch k {
	case EventTaskRun:
		return "run"
	case EventMountRun:
		return "mount"
	case EventCleanupError:
		return "cleanup_error"
	case EventTaskDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// TaskEvent describes one task lifecycle occurrence. Delivered synchronously
// to the container's Observer.
type TaskEvent struct {
	Kind    TaskEventKind
	Task    *Task
	Elapsed time.Duration
	Err     error
}

// ContainerConfig configures a Container.
type ContainerConfig struct {
	// Subs is the shared subscription manager. Required.
	Subs SubscriptionManager

	// Platform selects the execution environment.
	Platform platform.Platform

	// Scheduler receives dirty descriptors. Optional.
	Scheduler TaskScheduler

	// Hooks receives run-trigger registrations. Optional.
	Hooks TriggerHooks

	// Logger receives structured runtime logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Observer receives task lifecycle events. Optional.
	Observer func(TaskEvent)
}

// Container holds the shared state every descriptor in one component tree
// runs against: the subscription manager, the platform switch, and the
// scheduling collaborators.
type Container struct {
	subs      SubscriptionManager
	platform  platform.Platform
	scheduler TaskScheduler
	hooks     TriggerHooks
	logger    *slog.Logger
	observer  func(TaskEvent)
}

// NewContainer creates a container from cfg. Panics if cfg.Subs is nil.
func NewContainer(cfg ContainerConfig) *Container {
	if cfg.Subs == nil {
		panic("[QWIK E001] NewContainer: ContainerConfig.Subs is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Container{
		subs:      cfg.Subs,
		platform:  cfg.Platform,
		scheduler: cfg.Scheduler,
		hooks:     cfg.Hooks,
		logger:    logger,
		observer:  cfg.Observer,
	}
}

// Subs returns the container's subscription manager.
func (c *Container) Subs() SubscriptionManager { return c.subs }

// Platform returns the container's execution environment.
func (c *Container) Platform() platform.Platform { return c.platform }

func (c *Container) emit(ev TaskEvent) {
	if c.observer != nil {
		c.observer(ev)
	}
}

func (c *Container) schedule(t *Task) {
	if c.scheduler != nil {
		c.scheduler.ScheduleTask(t)
	}
}
