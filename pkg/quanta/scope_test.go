package quanta

import "testing"

func TestScopeAdoptsAndDisposes(t *testing.T) {
	scope := NewScope(nil)

	var count *Cell[int]
	var refresh *Notifier
	scope.Run(func() {
		count = NewCell(0)
		refresh = NewNotifier()
	})

	scope.Dispose()

	if !count.IsDisposed() {
		t.Error("owned cell must be disposed with the scope")
	}
	if !refresh.IsDisposed() {
		t.Error("owned notifier must be disposed with the scope")
	}
	if !scope.IsDisposed() {
		t.Error("expected IsDisposed after Dispose")
	}
}

func TestScopeCleanupOrder(t *testing.T) {
	scope := NewScope(nil)

	var order []string
	scope.OnCleanup(func() { order = append(order, "first") })
	scope.OnCleanup(func() { order = append(order, "second") })

	scope.Dispose()

	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("cleanups must run in reverse order, got %v", order)
	}

	// OnCleanup after dispose runs immediately.
	ran := false
	scope.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("OnCleanup on a disposed scope must run immediately")
	}
}

func TestScopeChildrenDisposedFirst(t *testing.T) {
	var order []string

	parent := NewScope(nil)
	parent.OnCleanup(func() { order = append(order, "parent") })

	childA := NewScope(parent)
	childA.OnCleanup(func() { order = append(order, "childA") })
	childB := NewScope(parent)
	childB.OnCleanup(func() { order = append(order, "childB") })

	parent.Dispose()

	if len(order) != 3 || order[0] != "childB" || order[1] != "childA" || order[2] != "parent" {
		t.Errorf("children dispose first, in reverse creation order; got %v", order)
	}
	if !childA.IsDisposed() || !childB.IsDisposed() {
		t.Error("children must be disposed with the parent")
	}
}

func TestScopeSinkInheritance(t *testing.T) {
	sink := &recordingSink{}
	scope := NewScope(nil, ScopeSink(sink))

	var count *Cell[int]
	scope.Run(func() {
		count = NewCell(0)
	})

	count.Attach(ObserverFunc(func(any) { panic("boom") }))
	count.Set(1)

	if sink.count() != 1 {
		t.Errorf("adopted cell must inherit the scope sink, got %d reports", sink.count())
	}
}

func TestScopeCellSinkOverridesScope(t *testing.T) {
	scopeSink := &recordingSink{}
	cellSink := &recordingSink{}
	scope := NewScope(nil, ScopeSink(scopeSink))

	var count *Cell[int]
	scope.Run(func() {
		count = NewCell(0, WithSink(cellSink))
	})

	count.Attach(ObserverFunc(func(any) { panic("boom") }))
	count.Set(1)

	if cellSink.count() != 1 {
		t.Errorf("cell-level sink must win, got %d reports", cellSink.count())
	}
	if scopeSink.count() != 0 {
		t.Errorf("scope sink must not receive overridden reports, got %d", scopeSink.count())
	}
}

func TestScopeValues(t *testing.T) {
	type dbKey struct{}

	parent := NewScope(nil)
	parent.SetValue(dbKey{}, "conn")

	child := NewScope(parent)

	if got := child.Value(dbKey{}); got != "conn" {
		t.Errorf("child must resolve parent values, got %v", got)
	}

	child.SetValue(dbKey{}, "override")
	if got := child.Value(dbKey{}); got != "override" {
		t.Errorf("child value must shadow parent, got %v", got)
	}
	if got := parent.Value(dbKey{}); got != "conn" {
		t.Errorf("parent value must be unchanged, got %v", got)
	}

	if got := parent.Value("missing"); got != nil {
		t.Errorf("unknown key must resolve to nil, got %v", got)
	}
}

func TestScopeDisposeIdempotent(t *testing.T) {
	scope := NewScope(nil)
	runs := 0
	scope.OnCleanup(func() { runs++ })

	scope.Dispose()
	scope.Dispose()

	if runs != 1 {
		t.Errorf("cleanups must run once, got %d", runs)
	}
}

func TestScopePersistables(t *testing.T) {
	scope := NewScope(nil)
	child := NewScope(scope)

	scope.Run(func() {
		NewCell(1, PersistKey("a"))
		NewCell(2) // no key, never captured
		NewCell(3, PersistKey("skip"), Ephemeral())
	})
	child.Run(func() {
		NewCell(4, PersistKey("b"))
	})

	keys := make([]string, 0, 2)
	for _, p := range scope.Persistables() {
		keys = append(keys, p.PersistKey())
	}

	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("expected keys [a b], got %v", keys)
	}
}
