package quanta

import "sync/atomic"

// globalIDCounter is the source of unique IDs for cells, notifiers,
// observers, watchers, and scopes. IDs are never reused.
var globalIDCounter atomic.Uint64

func nextID() uint64 {
	return globalIDCounter.Add(1)
}
