package quanta

import "fmt"

// Notifier is the value-less notification variant: it broadcasts an
// event to observers without carrying state. Ordering, deduplication,
// failure isolation, and dispose semantics match Cell.
type Notifier struct {
	base cellBase
}

// NewNotifier creates a notifier. The Distinct, PersistKey, and
// Ephemeral options do not apply and are ignored.
func NewNotifier(opts ...CellOption) *Notifier {
	o := applyOptions(opts)

	n := &Notifier{
		base: cellBase{
			id:   nextID(),
			name: o.name,
			sink: o.sink,
		},
	}
	if n.base.name == "" {
		n.base.name = fmt.Sprintf("notifier-%d", n.base.id)
	}

	if s := currentScope(); s != nil {
		s.adopt(&n.base, n)
	}
	if n.base.inst != nil {
		n.base.inst.CellCreated(n.base.name)
	}

	return n
}

// Notify synchronously invokes every registered observer in
// registration order. Observer panics are recovered and reported to
// the diagnostic sink; the pass always completes.
func (n *Notifier) Notify() {
	n.base.notify(nil)
}

// Attach registers o unless an observer with the same ID is present.
func (n *Notifier) Attach(o Observer) {
	n.base.attach(o)
}

// Detach removes o; absent observers are a no-op.
func (n *Notifier) Detach(o Observer) {
	n.base.detach(o)
}

// Watch attaches fn and returns its detach.
func (n *Notifier) Watch(fn func()) Cleanup {
	o := ObserverFunc(func(any) { fn() })
	n.base.attach(o)
	return func() { n.base.detach(o) }
}

// Dispose drops all observers and stops future notification.
func (n *Notifier) Dispose() {
	n.base.dispose()
}

// IsDisposed reports whether Dispose has been called.
func (n *Notifier) IsDisposed() bool {
	return n.base.disposed.Load()
}

func (n *Notifier) Name() string      { return n.base.name }
func (n *Notifier) ID() uint64        { return n.base.id }
func (n *Notifier) ChangeSeq() uint64 { return n.base.seq.Load() }
func (n *Notifier) Observers() int    { return n.base.observerCount() }

// ValueAny always returns nil: notifiers carry no state.
func (n *Notifier) ValueAny() any { return nil }

// WatchAny attaches a type-erased observer, for tooling.
func (n *Notifier) WatchAny(fn func(any)) Cleanup {
	o := ObserverFunc(fn)
	n.base.attach(o)
	return func() { n.base.detach(o) }
}

var _ Inspectable = (*Notifier)(nil)
