package qwik

import "strings"

// TaskFlags is a bitfield describing a task descriptor's variant and state.
// Flags are independently settable; variant flags are assigned at creation
// and TaskDirty toggles over the descriptor's lifetime.
type TaskFlags uint8

const (
	// TaskEffect marks a client-only effect variant.
	TaskEffect TaskFlags = 1 << iota

	// TaskWatch marks a tracked watch variant.
	TaskWatch

	// TaskDirty marks a descriptor that is due to run. Set at creation and
	// on any tracked-dependency mutation; cleared at the start of a run.
	TaskDirty

	// TaskCleanup marks a descriptor whose registered function is a bare
	// teardown callback rather than a trackable body.
	TaskCleanup
)

// Has reports whether all bits of flag are set.
func (f TaskFlags) Has(flag TaskFlags) bool { return f&flag == flag }

// String returns a human-readable flag list for logging.
func (f TaskFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f.Has(TaskEffect) {
		parts = append(parts, "effect")
	}
	if f.Has(TaskWatch) {
		parts = append(parts, "watch")
	}
	if f.Has(TaskDirty) {
		parts = append(parts, "dirty")
	}
	if f.Has(TaskCleanup) {
		parts = append(parts, "cleanup")
	}
	return strings.Join(parts, "|")
}
