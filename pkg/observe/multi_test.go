package observe

import (
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

type countingInstrument struct {
	created, disposed, passes, panics, runs int
}

func (c *countingInstrument) CellCreated(string)                      { c.created++ }
func (c *countingInstrument) CellDisposed(string)                     { c.disposed++ }
func (c *countingInstrument) NotifyPass(string, int, time.Duration)   { c.passes++ }
func (c *countingInstrument) ObserverPanic(string)                    { c.panics++ }
func (c *countingInstrument) TaskRun(string, error, time.Duration)    { c.runs++ }

func TestMultiFansOut(t *testing.T) {
	a := &countingInstrument{}
	b := &countingInstrument{}
	m := Multi(a, nil, b)

	m.CellCreated("x")
	m.CellDisposed("x")
	m.NotifyPass("x", 1, time.Millisecond)
	m.ObserverPanic("x")
	m.TaskRun("t", nil, time.Millisecond)

	for _, inst := range []*countingInstrument{a, b} {
		if inst.created != 1 || inst.disposed != 1 || inst.passes != 1 ||
			inst.panics != 1 || inst.runs != 1 {
			t.Errorf("instrument missed reports: %+v", inst)
		}
	}
}

func TestSinkCountsPanics(t *testing.T) {
	inst := &countingInstrument{}
	s := Sink(inst)

	s.ObserverPanic("cell", "boom")
	s.ObserverPanic("cell", "boom again")

	if inst.panics != 2 {
		t.Errorf("panics = %d, want 2", inst.panics)
	}
}

func TestSinkNilInstrument(t *testing.T) {
	s := Sink(nil)
	s.ObserverPanic("cell", "boom")
}

func TestTracingNoopProvider(t *testing.T) {
	inst := Tracing(
		WithTracerName("test"),
		WithTraceNotifies(true),
		WithAttributeExtractor(func(name string) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("app", "test")}
		}),
	)

	inst.CellCreated("a")
	inst.NotifyPass("a", 2, time.Millisecond)
	inst.ObserverPanic("a")
	inst.TaskRun("fetch", errors.New("boom"), time.Millisecond)
	inst.TaskRun("fetch", nil, time.Millisecond)
	inst.CellDisposed("a")
}

func TestTracingFilter(t *testing.T) {
	inst := Tracing(
		WithTraceNotifies(true),
		WithFilter(func(name string) bool { return name == "kept" }),
	)

	inst.NotifyPass("kept", 1, time.Millisecond)
	inst.NotifyPass("dropped", 1, time.Millisecond)
	inst.TaskRun("dropped", nil, time.Millisecond)
}
