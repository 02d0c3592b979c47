// Package qwik implements the reactive task core of the runtime: descriptors
// for registered side effects, the tracker that turns property reads into
// subscriptions, the runner that serializes and executes dirty descriptors,
// and the lifecycle registrars that create descriptors with different run
// policies across the server and client environments.
//
// # Registration
//
// Setup code registers effects against an InvokeContext:
//
//	ic := qwik.NewInvokeContext(container, el)
//	qwik.UseTask(ic, ref)                     // tracked watch, deferred
//	qwik.UseVisibleTask(ic, ref)              // client effect, runs on visibility
//	qwik.UseServerMount(ctx, ic, ref)         // awaited during server setup
//
// Each registrar resolves its call site through a per-element sequential
// scope, so re-running the same setup returns the existing descriptors
// instead of creating duplicates.
//
// # Execution
//
// A tracked write marks the subscribed descriptors dirty and hands them to
// the container's scheduler. The scheduler eventually calls RunSubscriber,
// which runs the previous cleanup, replaces the descriptor's subscriptions
// with the properties read on this run, and stores any returned cleanup.
// Runs of the same descriptor never overlap.
//
// The collaborators the core calls into (the subscription manager, the
// scheduler, and the trigger hooks) are interfaces; pkg/store and
// pkg/scheduler carry the default implementations.
package qwik
