package task

import (
	"sync"
	"testing"
	"time"
)

func TestLoopRunsInOrder(t *testing.T) {
	loop := NewLoop(16)
	defer loop.Close()

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})

	for i := 1; i <= 5; i++ {
		i := i
		loop.Dispatch(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			if i == 5 {
				close(done)
			}
		})
	}
	waitFor(t, done, "last dispatch")

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		if v != i+1 {
			t.Fatalf("got = %v, want 1..5 in order", got)
		}
	}
}

func TestLoopCloseDrainsQueued(t *testing.T) {
	loop := NewLoop(16)

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 10; i++ {
		loop.Dispatch(func() {
			mu.Lock()
			ran++
			mu.Unlock()
		})
	}
	loop.Close()

	mu.Lock()
	defer mu.Unlock()
	if ran != 10 {
		t.Errorf("ran = %d, want 10; Close must drain the queue", ran)
	}
}

func TestLoopDispatchAfterCloseDropped(t *testing.T) {
	loop := NewLoop(4)
	loop.Close()

	ran := make(chan struct{})
	loop.Dispatch(func() { close(ran) })

	select {
	case <-ran:
		t.Error("dispatch after Close must be dropped")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLoopCloseIdempotent(t *testing.T) {
	loop := NewLoop(4)
	loop.Close()
	loop.Close()
}

func TestLoopSurvivesPanic(t *testing.T) {
	loop := NewLoop(4)
	defer loop.Close()

	done := make(chan struct{})
	loop.Dispatch(func() { panic("kaboom") })
	loop.Dispatch(func() { close(done) })
	waitFor(t, done, "dispatch after panic")
}
