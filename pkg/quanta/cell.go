package quanta

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// Cell is an observable value container. It holds a value, mutated via
// Set, and synchronously notifies registered observers on mutation in
// registration order. Observer failures are isolated from each other
// and reported to the cell's diagnostic sink; they never surface to the
// caller of Set.
//
// By default Set always notifies. Use the Distinct option or WithEquals
// to opt into equality suppression.
//
// A Cell created while a Scope is current is owned by that scope and
// disposed with it; a standalone Cell is disposed by its creator.
type Cell[T any] struct {
	base cellBase

	value T
	mu    sync.RWMutex

	// equal is the equality function consulted only when distinct is
	// set. nil means defaultEquals.
	equal    func(T, T) bool
	distinct bool

	persistKey string
}

// NewCell creates a cell holding initial. If a scope is current it
// adopts the cell, injecting its sink and instrument where the options
// left them unset.
func NewCell[T any](initial T, opts ...CellOption) *Cell[T] {
	o := applyOptions(opts)

	c := &Cell[T]{
		base: cellBase{
			id:   nextID(),
			name: o.name,
			sink: o.sink,
		},
		value:    initial,
		distinct: o.distinct,
	}
	if c.base.name == "" {
		c.base.name = fmt.Sprintf("cell-%d", c.base.id)
	}
	if !o.ephemeral {
		c.persistKey = o.persistKey
	}

	if s := currentScope(); s != nil {
		s.adopt(&c.base, c)
		if c.persistKey != "" {
			s.addPersistable(c)
		}
	}
	if c.base.inst != nil {
		c.base.inst.CellCreated(c.base.name)
	}

	return c
}

// Get returns the current value with no side effects on the cell.
// Inside a watcher or derived computation it additionally subscribes
// that computation to this cell.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	value := c.value
	c.mu.RUnlock()

	c.base.track()
	return value
}

// Peek returns the current value and never participates in dependency
// tracking.
func (c *Cell[T]) Peek() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set replaces the value, then synchronously invokes every currently
// registered observer in registration order with the new value. With
// the Distinct option a Set equal to the current value is a silent
// no-op; otherwise every Set notifies.
//
// Calling Set from inside an observer is permitted; the nested pass
// runs to completion before the outer pass resumes with its next
// observer.
func (c *Cell[T]) Set(value T) {
	c.mu.Lock()
	if c.distinct && c.equals(c.value, value) {
		c.mu.Unlock()
		return
	}
	c.value = value
	c.mu.Unlock()

	c.base.notify(value)
}

// Update applies fn to the current value under the value lock, then
// notifies as Set does.
func (c *Cell[T]) Update(fn func(T) T) {
	c.mu.Lock()
	value := fn(c.value)
	if c.distinct && c.equals(c.value, value) {
		c.mu.Unlock()
		return
	}
	c.value = value
	c.mu.Unlock()

	c.base.notify(value)
}

// Attach registers o at the end of the observer sequence. Attaching an
// observer that is already registered (same ID) is a no-op; no error is
// signaled.
func (c *Cell[T]) Attach(o Observer) {
	c.base.attach(o)
}

// Detach removes o. Detaching an absent observer is a no-op.
// Detaching during a notification pass is safe but does not suppress an
// invocation already snapshotted into the in-flight pass.
func (c *Cell[T]) Detach(o Observer) {
	c.base.detach(o)
}

// Watch attaches fn as an observer and returns a Cleanup that detaches
// it. The returned Cleanup is safe to call more than once.
func (c *Cell[T]) Watch(fn func(T)) Cleanup {
	o := ObserverFunc(func(v any) {
		fn(v.(T))
	})
	c.base.attach(o)
	return func() { c.base.detach(o) }
}

// Dispose drops all observers and stops future notification. Set after
// Dispose still stores the value; Attach after Dispose is a no-op.
// Idempotent.
func (c *Cell[T]) Dispose() {
	c.base.dispose()
}

// IsDisposed reports whether Dispose has been called.
func (c *Cell[T]) IsDisposed() bool {
	return c.base.disposed.Load()
}

// WithEquals configures a custom equality function and enables
// equality suppression, for types where the default comparison is too
// expensive or has the wrong semantics.
func (c *Cell[T]) WithEquals(fn func(T, T) bool) *Cell[T] {
	c.equal = fn
	c.distinct = true
	return c
}

// Name returns the cell's diagnostic name.
func (c *Cell[T]) Name() string { return c.base.name }

// ID returns the cell's unique identifier.
func (c *Cell[T]) ID() uint64 { return c.base.id }

// ChangeSeq returns the number of completed mutations.
func (c *Cell[T]) ChangeSeq() uint64 { return c.base.seq.Load() }

// Observers returns the number of registered observers.
func (c *Cell[T]) Observers() int { return c.base.observerCount() }

// ValueAny returns the current value type-erased, for tooling.
func (c *Cell[T]) ValueAny() any { return c.Peek() }

// WatchAny attaches a type-erased observer, for tooling.
func (c *Cell[T]) WatchAny(fn func(any)) Cleanup {
	o := ObserverFunc(fn)
	c.base.attach(o)
	return func() { c.base.detach(o) }
}

// PersistKey returns the cell's snapshot key, or "" if the cell is not
// persistable.
func (c *Cell[T]) PersistKey() string { return c.persistKey }

// MarshalState encodes the current value as JSON for snapshots.
func (c *Cell[T]) MarshalState() ([]byte, error) {
	return json.Marshal(c.Peek())
}

// RestoreState decodes data and sets it as the current value,
// notifying observers like any other Set.
func (c *Cell[T]) RestoreState(data []byte) error {
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	c.Set(value)
	return nil
}

func (c *Cell[T]) equals(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals compares with == when the dynamic type is comparable
// and falls back to reflect.DeepEqual for slices, maps, and structs
// containing them.
func defaultEquals[T any](a, b T) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}
	if reflect.TypeOf(av).Comparable() && reflect.TypeOf(bv).Comparable() {
		return av == bv
	}
	return reflect.DeepEqual(av, bv)
}

var (
	_ Inspectable = (*Cell[int])(nil)
	_ Persistable = (*Cell[int])(nil)
)
