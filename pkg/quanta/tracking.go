package quanta

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for one goroutine: the scope
// that adopts newly created primitives, the observer that cell reads
// subscribe, and the batch queue. Each goroutine has its own context,
// so cross-goroutine use requires explicit propagation via WithScope.
type trackingContext struct {
	scope    *Scope
	observer Observer

	// batchDepth tracks nested Batch() calls. When > 0, notification
	// is queued instead of dispatched immediately.
	batchDepth int
	pending    []pendingNotify
}

// pendingNotify is one deferred observer invocation captured during a
// batch. The value recorded last for a (cell, observer) pair wins.
type pendingNotify struct {
	cell  *cellBase
	obs   Observer
	value any
}

var trackingContexts sync.Map

// goroutineID extracts the current goroutine's ID from the runtime
// stack header ("goroutine <id> ..."). Implementation detail only.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

func getTrackingContext() *trackingContext {
	gid := goroutineID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}
	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

func currentScope() *Scope {
	return getTrackingContext().scope
}

func setCurrentScope(s *Scope) *Scope {
	ctx := getTrackingContext()
	old := ctx.scope
	ctx.scope = s
	return old
}

func currentObserver() Observer {
	return getTrackingContext().observer
}

func setCurrentObserver(o Observer) Observer {
	ctx := getTrackingContext()
	old := ctx.observer
	ctx.observer = o
	return old
}

func batchDepth() int {
	return getTrackingContext().batchDepth
}

func incrementBatchDepth() {
	getTrackingContext().batchDepth++
}

// decrementBatchDepth returns true when the outermost batch completed.
func decrementBatchDepth() bool {
	ctx := getTrackingContext()
	ctx.batchDepth--
	return ctx.batchDepth == 0
}

func queuePending(p pendingNotify) {
	ctx := getTrackingContext()
	ctx.pending = append(ctx.pending, p)
}

func drainPending() []pendingNotify {
	ctx := getTrackingContext()
	pending := ctx.pending
	ctx.pending = nil
	return pending
}

// WithScope runs fn with s as the current scope. Cells, notifiers, and
// watchers created inside fn are owned by s. This is also the way to
// hand ownership across goroutines:
//
//	go func() {
//	    WithScope(scope, func() {
//	        status := NewCell("connecting")
//	        ...
//	    })
//	}()
func WithScope(s *Scope, fn func()) {
	old := setCurrentScope(s)
	defer setCurrentScope(old)
	fn()
}

// WithObserver runs fn with o receiving subscriptions for every cell
// read inside fn. Used by watchers and derived cells; exposed for
// integrations that implement their own Observer.
func WithObserver(o Observer, fn func()) {
	old := setCurrentObserver(o)
	defer setCurrentObserver(old)
	fn()
}
