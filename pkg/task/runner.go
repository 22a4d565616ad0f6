package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quanta-dev/quanta/pkg/quanta"
)

// ErrQueueFull is returned by Submit when a Queue-policy runner's
// buffer is full. The caller decides whether to retry or surface it.
var ErrQueueFull = errors.New("task: queue full")

// ErrRunning is returned by Submit under the DropWhileRunning policy
// while work is in flight. Safe to ignore when deduplicating rapid
// user actions.
var ErrRunning = errors.New("task: already running")

// Phase is the lifecycle state of a runner's most recent submission.
type Phase int

const (
	// Idle is the state before the first Submit.
	Idle Phase = iota

	// Running means work is in flight.
	Running

	// Succeeded means the last work item completed without error.
	Succeeded

	// Failed means the last work item returned an error.
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Policy defines how a runner handles Submit while work is in flight.
type Policy int

const (
	// PolicyCancelLatest cancels prior in-flight work on a new Submit.
	// The default.
	PolicyCancelLatest Policy = iota

	// PolicyDropWhileRunning rejects Submit with ErrRunning while work
	// is in flight.
	PolicyDropWhileRunning

	// PolicyQueue buffers submissions and executes them sequentially.
	PolicyQueue
)

// Dispatcher delivers runner state transitions and callbacks. Inject
// the host's event loop, or a task.Loop when there is none.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Direct runs transitions inline on the completing goroutine. Only
// suitable when the observers of the runner's cells are themselves
// safe for that goroutine.
var Direct Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// Option configures a runner.
type Option func(*config)

type config struct {
	policy   Policy
	queueMax int
	name     string
	inst     quanta.Instrument
}

// CancelLatest cancels prior in-flight work when Submit is called
// again. This is the default policy.
func CancelLatest() Option {
	return func(c *config) { c.policy = PolicyCancelLatest }
}

// DropWhileRunning rejects Submit with ErrRunning while work is in
// flight.
func DropWhileRunning() Option {
	return func(c *config) { c.policy = PolicyDropWhileRunning }
}

// Queue buffers up to max submissions and executes them sequentially.
// A full buffer rejects Submit with ErrQueueFull.
func Queue(max int) Option {
	if max <= 0 {
		max = 10
	}
	return func(c *config) {
		c.policy = PolicyQueue
		c.queueMax = max
	}
}

// WithName names the runner for telemetry and cell names.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithInstrument injects a telemetry instrument that receives one
// TaskRun report per completed work item.
func WithInstrument(inst quanta.Instrument) Option {
	return func(c *config) { c.inst = inst }
}

type queued[A any] struct {
	ctx context.Context
	arg A
}

// Runner owns one kind of asynchronous work and the cells that expose
// its progress. The work function runs on its own goroutine; phase,
// result, error, and callbacks are all applied through the injected
// Dispatcher.
type Runner[A, R any] struct {
	do         func(ctx context.Context, arg A) (R, error)
	dispatcher Dispatcher

	policy   Policy
	queueMax int
	queue    []queued[A]
	queueMu  sync.Mutex

	phase  *quanta.Cell[Phase]
	result *quanta.Cell[R]
	err    *quanta.Cell[error]

	cancel   context.CancelFunc
	cancelMu sync.Mutex

	// seq identifies the latest submission; completions of superseded
	// runs are discarded.
	seq     atomic.Uint64
	running atomic.Bool

	name string
	inst quanta.Instrument

	onStart   func()
	onSuccess func(R)
	onError   func(error)
}

// NewRunner creates a runner around the given work function. The
// dispatcher must not be nil; it is where every state transition runs.
// The phase, result, and error cells are created here, so a scope
// current at construction adopts them.
func NewRunner[A, R any](
	dispatcher Dispatcher,
	do func(ctx context.Context, arg A) (R, error),
	opts ...Option,
) *Runner[A, R] {
	if dispatcher == nil {
		panic("task: nil dispatcher")
	}

	cfg := config{policy: PolicyCancelLatest}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.name == "" {
		cfg.name = fmt.Sprintf("task-%d", nextRunnerID())
	}

	return &Runner[A, R]{
		do:         do,
		dispatcher: dispatcher,
		policy:     cfg.policy,
		queueMax:   cfg.queueMax,
		phase:      quanta.NewCell(Idle, quanta.WithName(cfg.name+":phase")),
		result:     quanta.NewCell(*new(R), quanta.WithName(cfg.name+":result")),
		err:        quanta.NewCell[error](nil, quanta.WithName(cfg.name+":error")),
		name:       cfg.name,
		inst:       cfg.inst,
	}
}

var runnerIDs atomic.Uint64

func nextRunnerID() uint64 { return runnerIDs.Add(1) }

// OnStart registers a callback delivered through the dispatcher when a
// submission starts. Chainable; call before the first Submit.
func (r *Runner[A, R]) OnStart(fn func()) *Runner[A, R] {
	r.onStart = fn
	return r
}

// OnSuccess registers a callback delivered through the dispatcher with
// each successful result.
func (r *Runner[A, R]) OnSuccess(fn func(R)) *Runner[A, R] {
	r.onSuccess = fn
	return r
}

// OnError registers a callback delivered through the dispatcher with
// each failure.
func (r *Runner[A, R]) OnError(fn func(error)) *Runner[A, R] {
	r.onError = fn
	return r
}

// Phase returns the cell holding the runner's lifecycle state.
func (r *Runner[A, R]) Phase() *quanta.Cell[Phase] { return r.phase }

// Result returns the cell holding the last successful result.
func (r *Runner[A, R]) Result() *quanta.Cell[R] { return r.result }

// Err returns the cell holding the last failure, nil after a success.
func (r *Runner[A, R]) Err() *quanta.Cell[error] { return r.err }

// Name returns the runner's telemetry name.
func (r *Runner[A, R]) Name() string { return r.name }

// Submit hands one work item to the runner. Behavior while work is in
// flight depends on the policy: CancelLatest cancels the prior run,
// DropWhileRunning returns ErrRunning, Queue buffers until full and
// then returns ErrQueueFull. ctx bounds the work item; cancelling it
// cancels the run.
func (r *Runner[A, R]) Submit(ctx context.Context, arg A) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch r.policy {
	case PolicyDropWhileRunning:
		if r.running.Load() {
			return ErrRunning
		}

	case PolicyQueue:
		r.queueMu.Lock()
		if r.running.Load() {
			if len(r.queue) >= r.queueMax {
				r.queueMu.Unlock()
				return ErrQueueFull
			}
			r.queue = append(r.queue, queued[A]{ctx: ctx, arg: arg})
			r.queueMu.Unlock()
			return nil
		}
		r.queueMu.Unlock()

	case PolicyCancelLatest:
		// Supersede before cancelling so the cancelled run's
		// completion is discarded even if it reaches the dispatcher
		// first.
		r.seq.Add(1)
		r.Cancel()
	}

	r.start(ctx, arg)
	return nil
}

// Cancel cancels in-flight work, if any. The cancelled run finishes
// with its context error unless a newer submission has superseded it.
func (r *Runner[A, R]) Cancel() {
	r.cancelMu.Lock()
	cancel := r.cancel
	r.cancelMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (r *Runner[A, R]) start(ctx context.Context, arg A) {
	seq := r.seq.Add(1)

	runCtx, cancel := context.WithCancel(ctx)
	r.cancelMu.Lock()
	r.cancel = cancel
	r.cancelMu.Unlock()

	r.running.Store(true)

	r.dispatcher.Dispatch(func() {
		r.phase.Set(Running)
		if r.onStart != nil {
			r.onStart()
		}
	})

	go func() {
		started := time.Now()
		result, err := r.do(runCtx, arg)
		cancel()

		if r.inst != nil {
			r.inst.TaskRun(r.name, err, time.Since(started))
		}

		r.dispatcher.Dispatch(func() {
			if r.seq.Load() != seq {
				// Superseded by a newer submission.
				return
			}
			r.finish(result, err)
		})
	}()
}

// finish applies the outcome and starts the next queued item, if any.
// Runs on the dispatcher.
func (r *Runner[A, R]) finish(result R, err error) {
	if err != nil {
		r.err.Set(err)
		r.phase.Set(Failed)
		if r.onError != nil {
			r.onError(err)
		}
	} else {
		r.err.Set(nil)
		r.result.Set(result)
		r.phase.Set(Succeeded)
		if r.onSuccess != nil {
			r.onSuccess(result)
		}
	}

	r.queueMu.Lock()
	if len(r.queue) > 0 {
		next := r.queue[0]
		r.queue = r.queue[1:]
		r.queueMu.Unlock()
		r.start(next.ctx, next.arg)
		return
	}
	r.queueMu.Unlock()

	r.running.Store(false)
}
