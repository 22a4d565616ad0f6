package quanta

// Inspectable is the type-erased view of a cell used by tooling such as
// the inspector server. Cell[T] and Notifier both implement it.
type Inspectable interface {
	Name() string
	ID() uint64

	// ValueAny returns the current value without tracking, or nil for
	// value-less notifiers.
	ValueAny() any

	// ChangeSeq returns the number of completed mutations.
	ChangeSeq() uint64

	// Observers returns the number of registered observers.
	Observers() int

	// WatchAny attaches a type-erased observer and returns its detach.
	WatchAny(fn func(any)) Cleanup
}

// Persistable is a cell that participates in scope snapshots. Only
// cells created with an explicit PersistKey implement a non-empty key.
type Persistable interface {
	PersistKey() string
	MarshalState() ([]byte, error)
	RestoreState(data []byte) error
}

// Disposable releases a primitive's observers and resources. Cells,
// notifiers, watchers, derived cells, and scopes all implement it.
type Disposable interface {
	Dispose()
}
