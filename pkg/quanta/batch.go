package quanta

// Batch groups multiple Set calls into a single notification phase.
// Observer invocations queued inside the batch are deduplicated per
// (cell, observer) pair, the last value written wins, and dispatched
// in first-queued order when the outermost batch completes.
//
// Batches nest; only the outermost completion dispatches.
//
// Example:
//
//	Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
//	// each observer ran once per cell it watches
func Batch(fn func()) {
	incrementBatchDepth()

	defer func() {
		if decrementBatchDepth() {
			dispatchPending(drainPending())
		}
	}()

	fn()
}

// dispatchPending deduplicates queued invocations and runs them with
// the same per-observer failure isolation as a direct Set.
func dispatchPending(pending []pendingNotify) {
	if len(pending) == 0 {
		return
	}

	type key struct {
		cell uint64
		obs  uint64
	}
	seen := make(map[key]int, len(pending))
	unique := make([]pendingNotify, 0, len(pending))

	for _, p := range pending {
		k := key{cell: p.cell.id, obs: p.obs.ID()}
		if i, ok := seen[k]; ok {
			unique[i].value = p.value
			continue
		}
		seen[k] = len(unique)
		unique = append(unique, p)
	}

	for _, p := range unique {
		if p.cell.disposed.Load() {
			continue
		}
		p.cell.invoke(p.obs, p.value)
	}
}

// Untracked runs fn without dependency tracking: cell reads inside do
// not subscribe the current watcher or derived computation. For a
// single read, Peek is clearer.
func Untracked(fn func()) {
	old := setCurrentObserver(nil)
	defer setCurrentObserver(old)
	fn()
}
