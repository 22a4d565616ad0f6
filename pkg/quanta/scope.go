package quanta

import (
	"sync"
	"sync/atomic"
)

// Scope is the lifecycle owner for reactive primitives. Cells,
// notifiers, watchers, and child scopes created while a scope is
// current (see WithScope and Scope.Run) are owned by it and disposed
// with it, children first, in reverse creation order.
//
// A scope also carries the explicitly injected collaborators, the
// diagnostic sink and the instrument, which the primitives it adopts
// inherit unless they were configured with their own. Dependencies are
// handed to the scope at construction; nothing is looked up from a
// global registry.
type Scope struct {
	id     uint64
	parent *Scope

	children   []*Scope
	childrenMu sync.Mutex

	watchers   []*Watcher
	watchersMu sync.Mutex

	// owned are adopted cells and notifiers, disposed in reverse order.
	owned   []Disposable
	ownedMu sync.Mutex

	// cleanups registered via OnCleanup, run in reverse order.
	cleanups   []func()
	cleanupsMu sync.Mutex

	// pending are watchers scheduled to re-run; drained by Flush.
	pending   []*Watcher
	pendingMu sync.Mutex

	// persist are adopted cells with explicit persist keys.
	persist   []Persistable
	persistMu sync.Mutex

	// values are explicitly provided scope-local dependencies,
	// resolved with parent fallback.
	values   map[any]any
	valuesMu sync.RWMutex

	sink Sink
	inst Instrument

	disposed atomic.Bool
}

// ScopeOption configures a scope at construction.
type ScopeOption func(*Scope)

// ScopeSink injects the diagnostic sink inherited by primitives the
// scope adopts.
func ScopeSink(sink Sink) ScopeOption {
	return func(s *Scope) {
		s.sink = sink
	}
}

// ScopeInstrument injects the telemetry instrument inherited by
// primitives the scope adopts.
func ScopeInstrument(inst Instrument) ScopeOption {
	return func(s *Scope) {
		s.inst = inst
	}
}

// NewScope creates a scope. A non-nil parent registers the new scope
// as a child and supplies sink and instrument defaults not overridden
// by options.
func NewScope(parent *Scope, opts ...ScopeOption) *Scope {
	s := &Scope{
		id:     nextID(),
		parent: parent,
	}
	for _, opt := range opts {
		opt(s)
	}

	if parent != nil {
		if s.sink == nil {
			s.sink = parent.sink
		}
		if s.inst == nil {
			s.inst = parent.inst
		}
		parent.addChild(s)
	}

	return s
}

// ID returns the scope's unique identifier.
func (s *Scope) ID() uint64 { return s.id }

// Parent returns the parent scope, or nil for a root scope.
func (s *Scope) Parent() *Scope { return s.parent }

// IsDisposed reports whether Dispose has been called.
func (s *Scope) IsDisposed() bool { return s.disposed.Load() }

// Run executes fn with this scope current, adopting every primitive
// created inside.
func (s *Scope) Run(fn func()) {
	WithScope(s, fn)
}

func (s *Scope) addChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()
	s.children = append(s.children, child)
}

func (s *Scope) removeChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()

	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// adopt takes ownership of a cell or notifier: the scope's sink and
// instrument fill any the cell options left unset, and the primitive
// is disposed with the scope.
func (s *Scope) adopt(base *cellBase, d Disposable) {
	if s.disposed.Load() {
		return
	}

	if base.sink == nil {
		base.sink = s.sink
	}
	if base.inst == nil {
		base.inst = s.inst
	}

	s.ownedMu.Lock()
	defer s.ownedMu.Unlock()
	s.owned = append(s.owned, d)
}

func (s *Scope) addPersistable(p Persistable) {
	if s.disposed.Load() {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	s.persist = append(s.persist, p)
}

func (s *Scope) addWatcher(w *Watcher) {
	if s.disposed.Load() {
		return
	}
	s.watchersMu.Lock()
	defer s.watchersMu.Unlock()
	s.watchers = append(s.watchers, w)
}

// scheduleWatcher queues a watcher re-run for the next Flush.
func (s *Scope) scheduleWatcher(w *Watcher) {
	if s.disposed.Load() {
		return
	}
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	s.pending = append(s.pending, w)
}

// OnCleanup registers fn to run when this scope is disposed. If the
// scope is already disposed, fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed.Load() {
		fn()
		return
	}

	s.cleanupsMu.Lock()
	defer s.cleanupsMu.Unlock()
	s.cleanups = append(s.cleanups, fn)
}

// SetValue provides a scope-local dependency under key, visible to
// this scope and its descendants via Value.
func (s *Scope) SetValue(key, value any) {
	s.valuesMu.Lock()
	defer s.valuesMu.Unlock()

	if s.values == nil {
		s.values = make(map[any]any)
	}
	s.values[key] = value
}

// Value resolves key on this scope, then on its ancestors. Returns nil
// if no scope in the chain provides it.
func (s *Scope) Value(key any) any {
	s.valuesMu.RLock()
	if s.values != nil {
		if v, ok := s.values[key]; ok {
			s.valuesMu.RUnlock()
			return v
		}
	}
	s.valuesMu.RUnlock()

	if s.parent != nil {
		return s.parent.Value(key)
	}
	return nil
}

// Flush runs watchers scheduled since the last flush, then flushes
// child scopes. One pass: watchers re-scheduled during the flush wait
// for the next call.
func (s *Scope) Flush() {
	if s.disposed.Load() {
		return
	}

	s.pendingMu.Lock()
	pending := s.pending
	s.pending = nil
	s.pendingMu.Unlock()

	for _, w := range pending {
		if w.pending.Load() {
			w.run()
		}
	}

	s.childrenMu.Lock()
	children := make([]*Scope, len(s.children))
	copy(children, s.children)
	s.childrenMu.Unlock()

	for _, child := range children {
		child.Flush()
	}
}

// HasPending reports whether this scope or any descendant has watchers
// waiting for a Flush.
func (s *Scope) HasPending() bool {
	if s.disposed.Load() {
		return false
	}

	s.pendingMu.Lock()
	n := len(s.pending)
	s.pendingMu.Unlock()
	if n > 0 {
		return true
	}

	s.childrenMu.Lock()
	children := make([]*Scope, len(s.children))
	copy(children, s.children)
	s.childrenMu.Unlock()

	for _, child := range children {
		if child.HasPending() {
			return true
		}
	}
	return false
}

// Persistables returns the persist-keyed cells owned by this scope and
// its descendants, parents before children.
func (s *Scope) Persistables() []Persistable {
	if s.disposed.Load() {
		return nil
	}

	s.persistMu.Lock()
	out := make([]Persistable, len(s.persist))
	copy(out, s.persist)
	s.persistMu.Unlock()

	s.childrenMu.Lock()
	children := make([]*Scope, len(s.children))
	copy(children, s.children)
	s.childrenMu.Unlock()

	for _, child := range children {
		out = append(out, child.Persistables()...)
	}
	return out
}

// Dispose disposes this scope: children first in reverse creation
// order, then watchers, then owned cells in reverse order, then
// cleanups in reverse order. Idempotent; the scope is unusable after.
func (s *Scope) Dispose() {
	if s.disposed.Swap(true) {
		return
	}

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	s.childrenMu.Lock()
	children := make([]*Scope, len(s.children))
	copy(children, s.children)
	s.children = nil
	s.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	s.watchersMu.Lock()
	watchers := s.watchers
	s.watchers = nil
	s.watchersMu.Unlock()

	for _, w := range watchers {
		w.Dispose()
	}

	s.ownedMu.Lock()
	owned := s.owned
	s.owned = nil
	s.ownedMu.Unlock()

	for i := len(owned) - 1; i >= 0; i-- {
		owned[i].Dispose()
	}

	s.cleanupsMu.Lock()
	cleanups := s.cleanups
	s.cleanups = nil
	s.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	s.pendingMu.Lock()
	s.pending = nil
	s.pendingMu.Unlock()

	s.persistMu.Lock()
	s.persist = nil
	s.persistMu.Unlock()
}
