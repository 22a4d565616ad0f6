// Package quanta provides granular observable state cells with ordered,
// failure-isolated change notification.
//
// # Core Types
//
// Cell[T] is an observable value container:
//
//	count := NewCell(0)
//	stop := count.Watch(func(n int) { fmt.Println("count:", n) })
//	count.Set(5)   // observers run now, in registration order
//	value := count.Get()
//	stop()
//
// Notifier is the value-less variant for plain event broadcast:
//
//	refresh := NewNotifier()
//	refresh.Watch(func() { redraw() })
//	refresh.Notify()
//
// Derived[T] is a cached computation over cells, and Watcher re-runs a
// side effect when any cell it read changes:
//
//	doubled := NewDerived(func() int { return count.Get() * 2 })
//	NewWatcher(func() Cleanup {
//	    fmt.Println("count is", count.Get())
//	    return nil
//	})
//
// # Notification Contract
//
// Set always notifies by default; equality suppression is opt-in via the
// Distinct option or WithEquals. Observers fire synchronously on the
// goroutine that calls Set, strictly in registration order, each run to
// completion before the next. A panicking observer never interrupts the
// pass: the panic is recovered, reported once to the cell's diagnostic
// Sink, and dispatch continues with the next observer.
//
// # Ownership
//
// A Scope owns cells, notifiers, and watchers created while it is
// current, and disposes them in reverse creation order. Collaborators
// such as the diagnostic sink are injected into the Scope at
// construction and inherited by the primitives it owns; there is no
// global registry.
//
// # Batching
//
// Batch groups several Set calls into one notification phase per
// observer; Untracked reads a cell without creating a dependency.
package quanta
