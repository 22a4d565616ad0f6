package task

import (
	"log"
	"sync"
)

// Loop is a minimal serial dispatcher: one goroutine runs dispatched
// functions in submission order. Use it as a Runner's Dispatcher when
// the host has no event loop of its own.
//
// A panicking function is recovered and logged; the loop keeps
// running.
type Loop struct {
	fns     chan func()
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewLoop starts the loop goroutine. buffer <= 0 selects a default
// buffer size.
func NewLoop(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 64
	}
	l := &Loop{
		fns:     make(chan func(), buffer),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.run()
	return l
}

// Dispatch queues fn for execution on the loop goroutine. Safe from
// any goroutine. After Close, dispatches are dropped.
func (l *Loop) Dispatch(fn func()) {
	select {
	case <-l.quit:
		return
	default:
	}

	select {
	case l.fns <- fn:
	case <-l.quit:
	}
}

// Close stops the loop after draining already-queued functions and
// waits for the goroutine to exit. Idempotent.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.quit) })
	<-l.stopped
}

func (l *Loop) run() {
	defer close(l.stopped)

	for {
		select {
		case fn := <-l.fns:
			l.invoke(fn)
		case <-l.quit:
			for {
				select {
				case fn := <-l.fns:
					l.invoke(fn)
				default:
					return
				}
			}
		}
	}
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("task: dispatched function panic: %v", r)
		}
	}()
	fn()
}
