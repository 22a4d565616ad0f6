package quanta

import (
	"sync"
	"sync/atomic"
	"time"
)

// cellBase provides type-erased observer management. It is embedded in
// Cell[T], Notifier, and Derived[T] to share the dispatch discipline:
// insertion order preserved, deduplication by observer ID, one recover
// per observer invocation, copy-before-notify so no lock is held while
// observer code runs.
type cellBase struct {
	id   uint64
	name string

	// sink receives observer panic reports. nil falls back to the
	// package default (standard log).
	sink Sink

	// inst receives telemetry. nil means instrumentation is off.
	inst Instrument

	// observers in registration order. An observer appears at most once.
	observers []Observer
	obsMu     sync.Mutex

	// disposed cells stop notifying and refuse new observers.
	disposed atomic.Bool

	// seq counts completed mutations, for tooling.
	seq atomic.Uint64
}

// attach appends o unless an observer with the same ID is already
// registered. Duplicate attach and attach-after-dispose are no-ops.
func (c *cellBase) attach(o Observer) {
	if o == nil || c.disposed.Load() {
		return
	}

	c.obsMu.Lock()
	defer c.obsMu.Unlock()

	oid := o.ID()
	for _, existing := range c.observers {
		if existing.ID() == oid {
			return
		}
	}
	c.observers = append(c.observers, o)
}

// detach removes the observer with o's ID, preserving the order of the
// rest. Absent observers are a no-op.
func (c *cellBase) detach(o Observer) {
	if o == nil {
		return
	}

	c.obsMu.Lock()
	defer c.obsMu.Unlock()

	oid := o.ID()
	for i, existing := range c.observers {
		if existing.ID() == oid {
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			return
		}
	}
}

func (c *cellBase) observerCount() int {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	return len(c.observers)
}

// snapshot copies the observer list so dispatch never holds the lock.
// Observers attached or detached after the snapshot join later passes;
// their ordering relative to the in-flight pass is undefined.
func (c *cellBase) snapshot() []Observer {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	obs := make([]Observer, len(c.observers))
	copy(obs, c.observers)
	return obs
}

// notify dispatches value to every registered observer in registration
// order. Inside a batch the invocations are queued and deduplicated;
// otherwise they run synchronously on the calling goroutine.
func (c *cellBase) notify(value any) {
	if c.disposed.Load() {
		return
	}
	c.seq.Add(1)

	obs := c.snapshot()
	if len(obs) == 0 {
		return
	}

	if batchDepth() > 0 {
		for _, o := range obs {
			queuePending(pendingNotify{cell: c, obs: o, value: value})
		}
		return
	}

	start := time.Now()
	for _, o := range obs {
		c.invoke(o, value)
	}
	if c.inst != nil {
		c.inst.NotifyPass(c.name, len(obs), time.Since(start))
	}
}

// invoke runs a single observer to completion. A panic is recovered,
// reported once to the diagnostic sink, and never reaches the caller
// of Set.
func (c *cellBase) invoke(o Observer, value any) {
	defer func() {
		if r := recover(); r != nil {
			if c.inst != nil {
				c.inst.ObserverPanic(c.name)
			}
			sink := c.sink
			if sink == nil {
				sink = defaultSink
			}
			sink.ObserverPanic(c.name, r)
		}
	}()

	o.OnChange(value)
}

// dispose drops all observers and stops future notification.
// Idempotent.
func (c *cellBase) dispose() {
	if c.disposed.Swap(true) {
		return
	}

	c.obsMu.Lock()
	c.observers = nil
	c.obsMu.Unlock()

	if c.inst != nil {
		c.inst.CellDisposed(c.name)
	}
}

// track subscribes the goroutine's current observer, if any. Called
// from Get so reads inside watchers and derived computations create
// dependencies automatically.
func (c *cellBase) track() {
	obs := currentObserver()
	if obs == nil {
		return
	}
	c.attach(obs)
	if st, ok := obs.(sourceTracker); ok {
		st.addSource(c)
	}
}

// sourceTracker is implemented by watchers and derived cells so they
// can detach from previous dependencies before re-tracking.
type sourceTracker interface {
	Observer
	addSource(*cellBase)
}
