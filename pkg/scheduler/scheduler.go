// Package scheduler provides the default scheduling collaborators for a
// container: a frame scheduler that drains dirty descriptors, and the
// registries behind the resume-on-load and visibility run-triggers.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	qwikerrors "github.com/GustavoMelloGit/qwik/internal/errors"
	"github.com/GustavoMelloGit/qwik/pkg/qrl"
	"github.com/GustavoMelloGit/qwik/pkg/qwik"
)

// Scheduler queues dirty descriptors and executes them in frames. It
// implements qwik.TaskScheduler and qwik.TriggerHooks.
//
// Descriptors are deduplicated while queued: scheduling an already-queued
// descriptor is a no-op. Draining happens only in Flush, so scheduling is
// cheap from any goroutine.
type Scheduler struct {
	logger *slog.Logger

	mu        sync.Mutex
	container *qwik.Container
	queue     []*qwik.Task
	queued    map[uint64]struct{}
	onLoad    []*qrl.QRL
	onVisible map[*qwik.Element][]*qrl.QRL
}

// New creates a scheduler. A nil logger defaults to slog.Default().
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		logger:    logger,
		queued:    make(map[uint64]struct{}),
		onVisible: make(map[*qwik.Element][]*qrl.QRL),
	}
}

// Bind attaches the container whose runner executes flushed descriptors.
// Must be called once before Flush; registrations may arrive earlier.
func (s *Scheduler) Bind(c *qwik.Container) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.container = c
}

// ScheduleTask queues a dirty descriptor for the next flush.
// Implements qwik.TaskScheduler.
func (s *Scheduler) ScheduleTask(t *qwik.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.queued[t.ID()]; ok {
		return
	}
	s.queued[t.ID()] = struct{}{}
	s.queue = append(s.queue, t)
}

// Pending returns the number of queued descriptors.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Flush runs queued descriptors until the queue is empty, awaiting each
// frame before starting the next so a run that re-dirties state is picked up
// by a later frame rather than racing the current one. Body errors are
// collected and joined; they do not stop the flush.
func (s *Scheduler) Flush(ctx context.Context) error {
	var errs []error

	for {
		s.mu.Lock()
		c := s.container
		batch := s.queue
		s.queue = nil
		for _, t := range batch {
			delete(s.queued, t.ID())
		}
		s.mu.Unlock()

		if len(batch) == 0 {
			return errors.Join(errs...)
		}
		if c == nil {
			return qwikerrors.New("E041")
		}

		runs := make([]*qwik.Run, 0, len(batch))
		for _, t := range batch {
			runs = append(runs, c.RunSubscriber(ctx, t))
		}
		for _, r := range runs {
			if err := r.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					errs = append(errs, err)
					return errors.Join(errs...)
				}
				s.logger.Error("task run failed during flush",
					"task", r.Task().ID(), "error", err)
				errs = append(errs, err)
			}
		}
	}
}

// RegisterOnLoad queues a trigger reference to fire when the client resumes.
// Implements qwik.TriggerHooks.
func (s *Scheduler) RegisterOnLoad(ref *qrl.QRL) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLoad = append(s.onLoad, ref)
}

// RegisterOnVisible queues a trigger reference to fire when el becomes
// visible. Implements qwik.TriggerHooks.
func (s *Scheduler) RegisterOnVisible(el *qwik.Element, ref *qrl.QRL) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onVisible[el] = append(s.onVisible[el], ref)
}

// Resume fires every resume-on-load registration once, in registration
// order, awaiting each invocation. Registrations are consumed.
func (s *Scheduler) Resume(ctx context.Context) error {
	s.mu.Lock()
	refs := s.onLoad
	s.onLoad = nil
	s.mu.Unlock()

	return s.fire(ctx, refs)
}

// ElementVisible fires el's visibility registrations once. Registrations are
// consumed; a second visibility of the same element fires nothing unless new
// registrations arrived.
func (s *Scheduler) ElementVisible(ctx context.Context, el *qwik.Element) error {
	s.mu.Lock()
	refs := s.onVisible[el]
	delete(s.onVisible, el)
	s.mu.Unlock()

	return s.fire(ctx, refs)
}

func (s *Scheduler) fire(ctx context.Context, refs []*qrl.QRL) error {
	var errs []error
	for _, ref := range refs {
		run, err := qwik.InvokeWatchQRL(ctx, ref)
		if err != nil {
			s.logger.Error("trigger invocation failed", "qrl", ref.String(), "error", err)
			errs = append(errs, err)
			continue
		}
		if err := run.Wait(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
