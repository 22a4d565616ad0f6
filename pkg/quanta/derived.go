package quanta

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Derived is a cached computation over cells. Reading any cell inside
// the compute function makes it a dependency; when a dependency
// changes the cached value is invalidated and recomputed on the next
// Get.
//
// A Derived can itself be observed like a cell, which allows chains of
// derived values. While it has observers, invalidation recomputes
// eagerly so the new value can be delivered; without observers it
// stays lazy.
type Derived[T any] struct {
	base cellBase

	compute func() T

	value   T
	valueMu sync.RWMutex

	valid atomic.Bool

	// computing guards against recursive recompute through a circular
	// dependency.
	computing atomic.Bool

	sources   []*cellBase
	sourcesMu sync.Mutex
}

// NewDerived creates a derived cell. The computation runs lazily on
// first Get, not at creation.
func NewDerived[T any](compute func() T, opts ...CellOption) *Derived[T] {
	o := applyOptions(opts)

	d := &Derived[T]{
		base: cellBase{
			id:   nextID(),
			name: o.name,
			sink: o.sink,
		},
		compute: compute,
	}
	if d.base.name == "" {
		d.base.name = fmt.Sprintf("derived-%d", d.base.id)
	}

	if s := currentScope(); s != nil {
		s.adopt(&d.base, d)
	}

	return d
}

// Get returns the derived value, recomputing if a dependency changed
// since the last read. Inside a watcher or another derived computation
// it also subscribes that computation to this one.
func (d *Derived[T]) Get() T {
	d.base.track()

	if !d.valid.Load() {
		d.recompute()
	}

	d.valueMu.RLock()
	value := d.value
	d.valueMu.RUnlock()
	return value
}

// Peek returns the derived value without subscribing. Still recomputes
// if stale.
func (d *Derived[T]) Peek() T {
	if !d.valid.Load() {
		d.recompute()
	}
	d.valueMu.RLock()
	value := d.value
	d.valueMu.RUnlock()
	return value
}

// OnChange implements Observer: a dependency changed. The cached value
// is invalidated; if anything observes this derived cell the value is
// recomputed now and pushed to observers.
func (d *Derived[T]) OnChange(any) {
	if !d.valid.CompareAndSwap(true, false) {
		return
	}
	if d.base.observerCount() == 0 {
		return
	}
	d.base.notify(d.Peek())
}

// ID implements Observer.
func (d *Derived[T]) ID() uint64 { return d.base.id }

// addSource implements sourceTracker.
func (d *Derived[T]) addSource(source *cellBase) {
	d.sourcesMu.Lock()
	defer d.sourcesMu.Unlock()

	for _, s := range d.sources {
		if s == source {
			return
		}
	}
	d.sources = append(d.sources, source)
}

// Attach registers an observer of the derived value.
func (d *Derived[T]) Attach(o Observer) { d.base.attach(o) }

// Detach removes an observer.
func (d *Derived[T]) Detach(o Observer) { d.base.detach(o) }

// Watch attaches fn as an observer and returns its detach.
func (d *Derived[T]) Watch(fn func(T)) Cleanup {
	o := ObserverFunc(func(v any) {
		fn(v.(T))
	})
	d.base.attach(o)
	return func() { d.base.detach(o) }
}

// Dispose detaches from all dependencies and drops all observers.
func (d *Derived[T]) Dispose() {
	d.base.dispose()

	d.sourcesMu.Lock()
	for _, source := range d.sources {
		source.detach(d)
	}
	d.sources = nil
	d.sourcesMu.Unlock()
}

// Name returns the derived cell's diagnostic name.
func (d *Derived[T]) Name() string { return d.base.name }

// ChangeSeq returns the number of pushed recomputations.
func (d *Derived[T]) ChangeSeq() uint64 { return d.base.seq.Load() }

// Observers returns the number of registered observers.
func (d *Derived[T]) Observers() int { return d.base.observerCount() }

// ValueAny returns the current value without subscribing.
func (d *Derived[T]) ValueAny() any { return d.Peek() }

// WatchAny attaches a type-erased observer and returns its detach.
func (d *Derived[T]) WatchAny(fn func(any)) Cleanup {
	o := ObserverFunc(fn)
	d.base.attach(o)
	return func() { d.base.detach(o) }
}

func (d *Derived[T]) recompute() {
	if d.computing.Swap(true) {
		// Circular dependency; keep the stale value.
		return
	}
	defer d.computing.Store(false)

	d.sourcesMu.Lock()
	for _, source := range d.sources {
		source.detach(d)
	}
	d.sources = d.sources[:0]
	d.sourcesMu.Unlock()

	old := setCurrentObserver(d)
	value := d.compute()
	setCurrentObserver(old)

	d.valueMu.Lock()
	d.value = value
	d.valueMu.Unlock()

	d.valid.Store(true)
}

var (
	_ sourceTracker = (*Derived[int])(nil)
	_ Inspectable   = (*Derived[int])(nil)
)
