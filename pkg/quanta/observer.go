package quanta

// Observer is anything that can be notified when a cell changes.
// Cells deduplicate observers by ID, so attaching the same observer
// twice is a no-op.
//
// The value passed to OnChange is the cell's new value (nil for
// Notifier). Watchers and derived cells implement Observer internally;
// most callers use Cell.Watch instead of implementing this directly.
type Observer interface {
	// OnChange delivers the new value after a mutation.
	OnChange(value any)

	// ID returns a stable identity for this observer. It is the
	// deduplication key for Attach and the removal key for Detach.
	ID() uint64
}

// Cleanup detaches an observer or releases a watcher's resources.
// Calling it more than once is safe.
type Cleanup func()

type funcObserver struct {
	id uint64
	fn func(any)
}

// ObserverFunc wraps a plain function in an Observer with a fresh
// identity. Two calls with the same function yield distinct observers.
func ObserverFunc(fn func(any)) Observer {
	return &funcObserver{id: nextID(), fn: fn}
}

func (o *funcObserver) OnChange(value any) { o.fn(value) }
func (o *funcObserver) ID() uint64         { return o.id }
