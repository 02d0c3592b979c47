package qwik

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/GustavoMelloGit/qwik/pkg/platform"
	"github.com/GustavoMelloGit/qwik/pkg/qrl"
)

func TestUseTaskCreatesDirtyWatch(t *testing.T) {
	e := newEnv(platform.ServerPlatform())
	task := UseTask(e.ic, noopTaskRef("watch"))

	flags := task.Flags()
	if !flags.Has(TaskWatch) || !flags.Has(TaskDirty) {
		t.Errorf("flags = %v, want watch|dirty", flags)
	}
	if flags.Has(TaskEffect) {
		t.Errorf("flags = %v, must not include effect", flags)
	}
	if got := e.sched.scheduled(); got != 1 {
		t.Errorf("scheduled %d times, want 1", got)
	}
}

func TestUseTaskTriggerRegistrationIsServerOnly(t *testing.T) {
	server := newEnv(platform.ServerPlatform())
	UseTask(server.ic, noopTaskRef("srv"), WithEagerness(EagernessLoad))
	if got := len(server.hooks.loadRefs()); got != 1 {
		t.Errorf("server load registrations = %d, want 1", got)
	}

	client := newEnv(platform.ClientPlatform())
	UseTask(client.ic, noopTaskRef("cli"), WithEagerness(EagernessLoad))
	if got := len(client.hooks.loadRefs()); got != 0 {
		t.Errorf("client load registrations = %d, want 0", got)
	}
}

func TestUseTaskDefaultEagernessRegistersNoTrigger(t *testing.T) {
	e := newEnv(platform.ServerPlatform())
	task := UseTask(e.ic, noopTaskRef("default"))

	if got := len(e.hooks.loadRefs()); got != 0 {
		t.Errorf("load registrations = %d, want 0", got)
	}
	if got := len(e.hooks.visibleRefs(task.Element())); got != 0 {
		t.Errorf("visible registrations = %d, want 0", got)
	}
}

func TestUseTaskRegistrationSideEffectsHappenOnce(t *testing.T) {
	e := newEnv(platform.ServerPlatform())
	ref := noopTaskRef("once")

	UseTask(e.ic, ref, WithEagerness(EagernessLoad))
	e.el.StartRender()
	UseTask(e.ic, ref, WithEagerness(EagernessLoad))

	if got := len(e.hooks.loadRefs()); got != 1 {
		t.Errorf("load registrations = %d, want 1", got)
	}
	if got := e.sched.scheduled(); got != 1 {
		t.Errorf("scheduled %d times, want 1", got)
	}
}

func TestUseVisibleTaskRegistersInBothEnvironments(t *testing.T) {
	for _, p := range []platform.Platform{platform.ServerPlatform(), platform.ClientPlatform()} {
		e := newEnv(p)
		task := UseVisibleTask(e.ic, noopTaskRef("visible"))

		flags := task.Flags()
		if !flags.Has(TaskEffect) || !flags.Has(TaskDirty) {
			t.Errorf("server=%v: flags = %v, want effect|dirty", p.IsServer(), flags)
		}
		if flags.Has(TaskWatch) {
			t.Errorf("server=%v: flags = %v, must not include watch", p.IsServer(), flags)
		}
		if got := len(e.hooks.visibleRefs(task.Element())); got != 1 {
			t.Errorf("server=%v: visible registrations = %d, want 1", p.IsServer(), got)
		}
		// Execution is deferred behind the trigger, never queued directly.
		if got := e.sched.scheduled(); got != 0 {
			t.Errorf("server=%v: scheduled %d times, want 0", p.IsServer(), got)
		}
	}
}

func TestUseVisibleTaskFiresThroughTrigger(t *testing.T) {
	e := newEnv(platform.ClientPlatform())
	var runs atomic.Int32

	ref := qrl.FromFunc("deferred", TaskFn(func(ctx context.Context, track Tracker) (CleanupFn, error) {
		runs.Add(1)
		return nil, nil
	}))
	task := UseVisibleTask(e.ic, ref)

	refs := e.hooks.visibleRefs(task.Element())
	if len(refs) != 1 {
		t.Fatalf("visible registrations = %d, want 1", len(refs))
	}

	ctx := context.Background()
	run, err := InvokeWatchQRL(ctx, refs[0])
	if err != nil {
		t.Fatal(err)
	}
	if err := run.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if got := runs.Load(); got != 1 {
		t.Errorf("body ran %d times, want 1", got)
	}
}

func TestUseMountRunsInBothEnvironments(t *testing.T) {
	for _, p := range []platform.Platform{platform.ServerPlatform(), platform.ClientPlatform()} {
		e := newEnv(p)
		var runs atomic.Int32

		ref := qrl.FromFunc("mount", MountFn(func(ctx context.Context) error {
			runs.Add(1)
			return nil
		}))
		task, err := UseMount(context.Background(), e.ic, ref)
		if err != nil {
			t.Fatal(err)
		}
		if task == nil {
			t.Fatal("UseMount returned a nil descriptor")
		}
		if got := runs.Load(); got != 1 {
			t.Errorf("server=%v: mount ran %d times, want 1", p.IsServer(), got)
		}
		if got := e.events.countKind(EventMountRun); got != 1 {
			t.Errorf("server=%v: mount events = %d, want 1", p.IsServer(), got)
		}
	}
}

func TestUseMountErrorFailsSetup(t *testing.T) {
	e := newEnv(platform.ServerPlatform())
	wantErr := errors.New("mount failed")

	ref := qrl.FromFunc("failing-mount", MountFn(func(ctx context.Context) error {
		return wantErr
	}))
	if _, err := UseMount(context.Background(), e.ic, ref); !errors.Is(err, wantErr) {
		t.Fatalf("UseMount() error = %v, want %v", err, wantErr)
	}
}

func TestUseServerMountGating(t *testing.T) {
	tests := []struct {
		p        platform.Platform
		wantRuns int32
	}{
		{platform.ServerPlatform(), 1},
		{platform.ClientPlatform(), 0},
	}

	for _, tt := range tests {
		e := newEnv(tt.p)
		var runs atomic.Int32

		ref := qrl.FromFunc("server-mount", MountFn(func(ctx context.Context) error {
			runs.Add(1)
			return nil
		}))
		task, err := UseServerMount(context.Background(), e.ic, ref)
		if err != nil {
			t.Fatal(err)
		}
		if got := runs.Load(); got != tt.wantRuns {
			t.Errorf("server=%v: mount ran %d times, want %d", tt.p.IsServer(), got, tt.wantRuns)
		}
		// The descriptor occupies its call-site slot even when gated out,
		// keeping later call sites aligned.
		if task == nil || len(GetContext(e.el).Watches) != 1 {
			t.Errorf("server=%v: gated mount must still occupy its slot", tt.p.IsServer())
		}
		// Mounts run inline during setup; they never reach the scheduler.
		if got := e.sched.scheduled(); got != 0 {
			t.Errorf("server=%v: mount scheduled %d descriptor runs, want 0", tt.p.IsServer(), got)
		}
	}
}

func TestUseClientMountGating(t *testing.T) {
	tests := []struct {
		p        platform.Platform
		wantRuns int32
	}{
		{platform.ServerPlatform(), 0},
		{platform.ClientPlatform(), 1},
	}

	for _, tt := range tests {
		e := newEnv(tt.p)
		var runs atomic.Int32

		ref := qrl.FromFunc("client-mount", MountFn(func(ctx context.Context) error {
			runs.Add(1)
			return nil
		}))
		if _, err := UseClientMount(context.Background(), e.ic, ref); err != nil {
			t.Fatal(err)
		}
		if got := runs.Load(); got != tt.wantRuns {
			t.Errorf("server=%v: mount ran %d times, want %d", tt.p.IsServer(), got, tt.wantRuns)
		}
	}
}

func TestUseMountRunsOncePerCallSite(t *testing.T) {
	e := newEnv(platform.ServerPlatform())
	var runs atomic.Int32

	ref := qrl.FromFunc("mount-once", MountFn(func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))

	if _, err := UseMount(context.Background(), e.ic, ref); err != nil {
		t.Fatal(err)
	}
	e.el.StartRender()
	if _, err := UseMount(context.Background(), e.ic, ref); err != nil {
		t.Fatal(err)
	}

	if got := runs.Load(); got != 1 {
		t.Errorf("mount ran %d times across re-renders, want 1", got)
	}
}
