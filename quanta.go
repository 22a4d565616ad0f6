// Package quanta provides the public API for the quanta observable
// state library.
//
// This is the recommended import for most applications:
//
//	import "github.com/quanta-dev/quanta"
//
// Usage:
//
//	count := quanta.NewCell(0)
//	stop := count.Watch(func(v int) { fmt.Println("count:", v) })
//	count.Set(1)
//	stop()
package quanta

import (
	"context"

	corequanta "github.com/quanta-dev/quanta/pkg/quanta"
	"github.com/quanta-dev/quanta/pkg/task"
)

// =============================================================================
// Cells (re-export from pkg/quanta)
// =============================================================================

// Cell is a value holder that notifies observers on every Set.
type Cell[T any] = corequanta.Cell[T]

// Notifier is a value-less cell used purely as a change signal.
type Notifier = corequanta.Notifier

// Derived is a cached computation over cells.
type Derived[T any] = corequanta.Derived[T]

// Watcher reruns a function whenever the cells it reads change.
type Watcher = corequanta.Watcher

// Scope owns cells and watchers and disposes them together.
type Scope = corequanta.Scope

// Observer receives cell change notifications.
type Observer = corequanta.Observer

// Cleanup detaches an observer or undoes a registration.
type Cleanup = corequanta.Cleanup

// Sink receives recovered observer panics.
type Sink = corequanta.Sink

// Instrument receives telemetry reports; see pkg/observe for backends.
type Instrument = corequanta.Instrument

// Inspectable is the type-erased cell view used by tooling.
type Inspectable = corequanta.Inspectable

// NewCell creates a cell holding the initial value.
//
// Example:
//
//	count := quanta.NewCell(0)
//	count.Set(1)
//	value := count.Get() // 1
func NewCell[T any](initial T, opts ...CellOption) *Cell[T] {
	return corequanta.NewCell(initial, opts...)
}

// NewNotifier creates a value-less notifier.
var NewNotifier = corequanta.NewNotifier

// NewDerived creates a cached computation that tracks the cells it
// reads.
//
// Example:
//
//	doubled := quanta.NewDerived(func() int {
//	    return count.Get() * 2
//	})
func NewDerived[T any](compute func() T, opts ...CellOption) *Derived[T] {
	return corequanta.NewDerived(compute, opts...)
}

// NewWatcher runs fn now and again whenever a cell it read changes.
var NewWatcher = corequanta.NewWatcher

// NewScope creates an ownership scope. Cells created inside
// scope.Run are disposed with it.
var NewScope = corequanta.NewScope

// Batch coalesces notifications: observers see only the last value per
// cell once the outermost batch ends.
var Batch = corequanta.Batch

// Untracked runs fn with dependency tracking suspended.
var Untracked = corequanta.Untracked

// ObserverFunc adapts a function to the Observer interface.
var ObserverFunc = corequanta.ObserverFunc

// =============================================================================
// Cell options
// =============================================================================

// CellOption configures a cell at creation.
type CellOption = corequanta.CellOption

// ScopeOption configures a scope at creation.
type ScopeOption = corequanta.ScopeOption

// WithName names a cell for diagnostics and telemetry.
var WithName = corequanta.WithName

// WithSink routes the cell's recovered observer panics to a sink.
var WithSink = corequanta.WithSink

// Distinct suppresses notifications when the new value equals the old.
var Distinct = corequanta.Distinct

// PersistKey opts the cell into scope snapshots; see pkg/persist.
var PersistKey = corequanta.PersistKey

// Ephemeral excludes a cell from scope snapshots.
var Ephemeral = corequanta.Ephemeral

// ScopeSink sets the default sink for cells created in the scope.
var ScopeSink = corequanta.ScopeSink

// ScopeInstrument sets the telemetry instrument for the scope.
var ScopeInstrument = corequanta.ScopeInstrument

// =============================================================================
// Async work (re-export from pkg/task)
// =============================================================================

// Runner owns one kind of asynchronous work and the cells exposing
// its progress.
type Runner[A, R any] = task.Runner[A, R]

// Dispatcher delivers runner state transitions.
type Dispatcher = task.Dispatcher

// NewRunner creates a runner around the given work function.
func NewRunner[A, R any](
	dispatcher Dispatcher,
	do func(ctx context.Context, arg A) (R, error),
	opts ...task.Option,
) *Runner[A, R] {
	return task.NewRunner(dispatcher, do, opts...)
}
