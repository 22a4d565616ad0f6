package quanta

import "testing"

func TestBatchCoalescesPerObserver(t *testing.T) {
	count := NewCell(0)
	obs := newTestObserver()
	count.Attach(obs)

	Batch(func() {
		count.Set(1)
		count.Set(2)
		count.Set(3)

		if obs.calls() != 0 {
			t.Fatalf("no dispatch inside a batch, got %d calls", obs.calls())
		}
	})

	if obs.calls() != 1 {
		t.Fatalf("expected 1 coalesced notification, got %d", obs.calls())
	}
	if got := obs.last(); got != 3 {
		t.Errorf("last written value wins, got %v", got)
	}
}

func TestBatchMultipleCells(t *testing.T) {
	first := NewCell("")
	last := NewCell("")

	var order []string
	first.Watch(func(s string) { order = append(order, "first:"+s) })
	last.Watch(func(s string) { order = append(order, "last:"+s) })

	Batch(func() {
		first.Set("John")
		last.Set("Doe")
	})

	if len(order) != 2 || order[0] != "first:John" || order[1] != "last:Doe" {
		t.Errorf("expected one dispatch per cell in write order, got %v", order)
	}
}

func TestBatchNesting(t *testing.T) {
	count := NewCell(0)
	obs := newTestObserver()
	count.Attach(obs)

	Batch(func() {
		count.Set(1)
		Batch(func() {
			count.Set(2)
		})
		if obs.calls() != 0 {
			t.Fatalf("inner batch completion must not dispatch, got %d calls", obs.calls())
		}
	})

	if obs.calls() != 1 {
		t.Errorf("expected dispatch at outermost completion only, got %d", obs.calls())
	}
	if got := obs.last(); got != 2 {
		t.Errorf("expected final value 2, got %v", got)
	}
}

func TestBatchValueVisibleImmediately(t *testing.T) {
	count := NewCell(0)

	Batch(func() {
		count.Set(5)
		if got := count.Get(); got != 5 {
			t.Errorf("writes are visible inside the batch, got %d", got)
		}
	})
}

func TestBatchPanicIsolation(t *testing.T) {
	sink := &recordingSink{}
	count := NewCell(0, WithSink(sink))

	count.Attach(ObserverFunc(func(any) { panic("boom") }))
	obs := newTestObserver()
	count.Attach(obs)

	Batch(func() {
		count.Set(1)
	})

	if sink.count() != 1 {
		t.Errorf("expected 1 sink report from batched dispatch, got %d", sink.count())
	}
	if obs.calls() != 1 {
		t.Errorf("later observer must still run, got %d calls", obs.calls())
	}
}

func TestBatchDisposedCellSkipped(t *testing.T) {
	count := NewCell(0)
	obs := newTestObserver()
	count.Attach(obs)

	Batch(func() {
		count.Set(1)
		count.Dispose()
	})

	if obs.calls() != 0 {
		t.Errorf("cell disposed before dispatch must not notify, got %d calls", obs.calls())
	}
}
