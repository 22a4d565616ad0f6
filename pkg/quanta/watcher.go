package quanta

import (
	"sync"
	"sync/atomic"
)

// Watcher is a side effect that re-runs when any cell it read during
// its last run changes. The function may return a Cleanup that runs
// before each re-run and at dispose.
//
// A watcher owned by a scope is re-run by Scope.Flush; a standalone
// watcher re-runs synchronously on the goroutine that mutated the
// cell.
type Watcher struct {
	id uint64
	fn func() Cleanup

	cleanup Cleanup

	// sources are the cells read during the last run.
	sources   []*cellBase
	sourcesMu sync.Mutex

	scope *Scope

	pending  atomic.Bool
	disposed atomic.Bool
}

// NewWatcher creates a watcher and runs it immediately, tracking every
// cell read during the run as a dependency.
func NewWatcher(fn func() Cleanup) *Watcher {
	w := &Watcher{
		id:    nextID(),
		fn:    fn,
		scope: currentScope(),
	}

	if w.scope != nil {
		w.scope.addWatcher(w)
	}

	w.run()
	return w
}

// OnChange implements Observer. A dirty watcher is scheduled once per
// flush regardless of how many of its dependencies changed.
func (w *Watcher) OnChange(any) {
	if w.disposed.Load() {
		return
	}

	if w.pending.CompareAndSwap(false, true) {
		if w.scope != nil {
			w.scope.scheduleWatcher(w)
		} else {
			w.run()
		}
	}
}

// ID implements Observer.
func (w *Watcher) ID() uint64 { return w.id }

// addSource implements sourceTracker; cells call it when read during
// this watcher's run.
func (w *Watcher) addSource(source *cellBase) {
	w.sourcesMu.Lock()
	defer w.sourcesMu.Unlock()

	for _, s := range w.sources {
		if s == source {
			return
		}
	}
	w.sources = append(w.sources, source)
}

// run executes the watcher function, re-tracking dependencies from
// scratch so reads behind branches drop stale subscriptions.
func (w *Watcher) run() {
	if w.disposed.Load() {
		return
	}

	w.pending.Store(false)

	if w.cleanup != nil {
		w.cleanup()
		w.cleanup = nil
	}

	w.sourcesMu.Lock()
	for _, source := range w.sources {
		source.detach(w)
	}
	w.sources = w.sources[:0]
	w.sourcesMu.Unlock()

	old := setCurrentObserver(w)
	w.cleanup = w.fn()
	setCurrentObserver(old)
}

// Dispose runs the last cleanup and detaches from all sources.
// Idempotent.
func (w *Watcher) Dispose() {
	if w.disposed.Swap(true) {
		return
	}

	if w.cleanup != nil {
		w.cleanup()
		w.cleanup = nil
	}

	w.sourcesMu.Lock()
	for _, source := range w.sources {
		source.detach(w)
	}
	w.sources = nil
	w.sourcesMu.Unlock()
}

// IsDisposed reports whether Dispose has been called.
func (w *Watcher) IsDisposed() bool {
	return w.disposed.Load()
}

var _ sourceTracker = (*Watcher)(nil)
