package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestRunnerSuccess(t *testing.T) {
	done := make(chan struct{})
	r := NewRunner(Direct, func(ctx context.Context, n int) (int, error) {
		return n * 2, nil
	}).OnSuccess(func(int) { close(done) })

	if got := r.Phase().Peek(); got != Idle {
		t.Fatalf("initial phase = %v, want %v", got, Idle)
	}
	if err := r.Submit(context.Background(), 21); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitFor(t, done, "success callback")

	if got := r.Phase().Peek(); got != Succeeded {
		t.Errorf("phase = %v, want %v", got, Succeeded)
	}
	if got := r.Result().Peek(); got != 42 {
		t.Errorf("result = %d, want 42", got)
	}
	if got := r.Err().Peek(); got != nil {
		t.Errorf("err = %v, want nil", got)
	}
}

func TestRunnerFailure(t *testing.T) {
	boom := errors.New("boom")
	done := make(chan struct{})
	r := NewRunner(Direct, func(ctx context.Context, n int) (int, error) {
		return 0, boom
	}).OnError(func(error) { close(done) })

	if err := r.Submit(context.Background(), 1); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitFor(t, done, "error callback")

	if got := r.Phase().Peek(); got != Failed {
		t.Errorf("phase = %v, want %v", got, Failed)
	}
	if got := r.Err().Peek(); !errors.Is(got, boom) {
		t.Errorf("err = %v, want %v", got, boom)
	}
}

func TestRunnerErrClearedOnSuccess(t *testing.T) {
	var mu sync.Mutex
	fail := true
	step := make(chan struct{}, 2)
	r := NewRunner(Direct, func(ctx context.Context, n int) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return 0, errors.New("first try")
		}
		return n, nil
	}).OnError(func(error) { step <- struct{}{} }).
		OnSuccess(func(int) { step <- struct{}{} })

	if err := r.Submit(context.Background(), 1); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitFor(t, step, "error callback")

	mu.Lock()
	fail = false
	mu.Unlock()
	if err := r.Submit(context.Background(), 7); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitFor(t, step, "success callback")

	if got := r.Err().Peek(); got != nil {
		t.Errorf("err = %v, want nil after success", got)
	}
	if got := r.Result().Peek(); got != 7 {
		t.Errorf("result = %d, want 7", got)
	}
}

func TestRunnerPhaseTransitions(t *testing.T) {
	loop := NewLoop(16)
	defer loop.Close()

	var mu sync.Mutex
	var phases []Phase
	done := make(chan struct{})

	r := NewRunner(loop, func(ctx context.Context, n int) (int, error) {
		return n, nil
	}).OnSuccess(func(int) { close(done) })

	r.Phase().Watch(func(p Phase) {
		mu.Lock()
		phases = append(phases, p)
		mu.Unlock()
	})

	if err := r.Submit(context.Background(), 1); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitFor(t, done, "success callback")

	mu.Lock()
	defer mu.Unlock()
	want := []Phase{Running, Succeeded}
	if len(phases) != len(want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("phases = %v, want %v", phases, want)
		}
	}
}

func TestDropWhileRunning(t *testing.T) {
	release := make(chan struct{})
	done := make(chan struct{})
	var doneOnce sync.Once
	r := NewRunner(Direct, func(ctx context.Context, n int) (int, error) {
		<-release
		return n, nil
	}, DropWhileRunning()).OnSuccess(func(int) { doneOnce.Do(func() { close(done) }) })

	if err := r.Submit(context.Background(), 1); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if err := r.Submit(context.Background(), 2); !errors.Is(err, ErrRunning) {
		t.Fatalf("second Submit = %v, want ErrRunning", err)
	}

	close(release)
	waitFor(t, done, "success callback")

	if got := r.Result().Peek(); got != 1 {
		t.Errorf("result = %d, want 1", got)
	}
	// running clears just after the callback; allow the flag a moment.
	deadline := time.Now().Add(time.Second)
	for {
		err := r.Submit(context.Background(), 3)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrRunning) || time.Now().After(deadline) {
			t.Fatalf("Submit after completion: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestQueuePolicy(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	var results []int
	done := make(chan struct{}, 3)

	r := NewRunner(Direct, func(ctx context.Context, n int) (int, error) {
		if n == 1 {
			<-release
		}
		return n, nil
	}, Queue(2)).OnSuccess(func(v int) {
		mu.Lock()
		results = append(results, v)
		mu.Unlock()
		done <- struct{}{}
	})

	if err := r.Submit(context.Background(), 1); err != nil {
		t.Fatalf("Submit 1: %v", err)
	}
	if err := r.Submit(context.Background(), 2); err != nil {
		t.Fatalf("Submit 2: %v", err)
	}
	if err := r.Submit(context.Background(), 3); err != nil {
		t.Fatalf("Submit 3: %v", err)
	}
	if err := r.Submit(context.Background(), 4); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Submit 4 = %v, want ErrQueueFull", err)
	}

	close(release)
	for i := 0; i < 3; i++ {
		waitFor(t, done, "queued completion")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []int{1, 2, 3}
	if len(results) != len(want) {
		t.Fatalf("results = %v, want %v", results, want)
	}
	for i := range want {
		if results[i] != want[i] {
			t.Fatalf("results = %v, want %v", results, want)
		}
	}
}

func TestCancelLatestSupersedes(t *testing.T) {
	done := make(chan struct{})
	r := NewRunner(Direct, func(ctx context.Context, n int) (int, error) {
		if n == 1 {
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return n, nil
	}).OnSuccess(func(int) { close(done) })

	if err := r.Submit(context.Background(), 1); err != nil {
		t.Fatalf("Submit 1: %v", err)
	}
	if err := r.Submit(context.Background(), 2); err != nil {
		t.Fatalf("Submit 2: %v", err)
	}
	waitFor(t, done, "success callback")

	if got := r.Result().Peek(); got != 2 {
		t.Errorf("result = %d, want 2", got)
	}
	if got := r.Phase().Peek(); got != Succeeded {
		t.Errorf("phase = %v, want %v; cancelled run must not win", got, Succeeded)
	}
	if got := r.Err().Peek(); got != nil {
		t.Errorf("err = %v, want nil; cancelled run must not report", got)
	}
}

func TestCancel(t *testing.T) {
	started := make(chan struct{})
	errored := make(chan struct{})
	r := NewRunner(Direct, func(ctx context.Context, n int) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	}).OnError(func(error) { close(errored) })

	if err := r.Submit(context.Background(), 1); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitFor(t, started, "work start")
	r.Cancel()
	waitFor(t, errored, "error callback")

	if got := r.Phase().Peek(); got != Failed {
		t.Errorf("phase = %v, want %v", got, Failed)
	}
	if got := r.Err().Peek(); !errors.Is(got, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", got)
	}
}

func TestSubmitContextBoundsWork(t *testing.T) {
	errored := make(chan struct{})
	r := NewRunner(Direct, func(ctx context.Context, n int) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}).OnError(func(error) { close(errored) })

	ctx, cancel := context.WithCancel(context.Background())
	if err := r.Submit(ctx, 1); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	cancel()
	waitFor(t, errored, "error callback")

	if got := r.Err().Peek(); !errors.Is(got, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", got)
	}
}

func TestRunnerOnStart(t *testing.T) {
	started := make(chan struct{})
	done := make(chan struct{})
	r := NewRunner(Direct, func(ctx context.Context, n int) (int, error) {
		return n, nil
	}).OnStart(func() { close(started) }).
		OnSuccess(func(int) { close(done) })

	if err := r.Submit(context.Background(), 1); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitFor(t, started, "start callback")
	waitFor(t, done, "success callback")
}

func TestNewRunnerNilDispatcherPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on nil dispatcher")
		}
	}()
	NewRunner[int, int](nil, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})
}

func TestRunnerNames(t *testing.T) {
	r := NewRunner(Direct, func(ctx context.Context, n int) (int, error) {
		return n, nil
	}, WithName("fetch"))

	if r.Name() != "fetch" {
		t.Errorf("Name() = %q, want %q", r.Name(), "fetch")
	}
	if got := r.Phase().Name(); got != "fetch:phase" {
		t.Errorf("phase cell name = %q, want %q", got, "fetch:phase")
	}

	auto := NewRunner(Direct, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})
	if auto.Name() == "" {
		t.Error("auto-generated name is empty")
	}
}

func TestPhaseString(t *testing.T) {
	cases := []struct {
		p    Phase
		want string
	}{
		{Idle, "idle"},
		{Running, "running"},
		{Succeeded, "succeeded"},
		{Failed, "failed"},
		{Phase(99), "unknown"},
	}
	for _, c := range cases {
		if got := c.p.String(); got != c.want {
			t.Errorf("Phase(%d).String() = %q, want %q", c.p, got, c.want)
		}
	}
}
