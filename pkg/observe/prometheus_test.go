package observe

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/quanta-dev/quanta/pkg/quanta"
)

func newTestInstrument(t *testing.T) *PromInstrument {
	t.Helper()
	return Prometheus(WithRegistry(prometheus.NewRegistry()))
}

func TestPrometheusCellLifecycle(t *testing.T) {
	inst := newTestInstrument(t)

	inst.CellCreated("a")
	inst.CellCreated("b")
	inst.CellDisposed("a")

	if got := testutil.ToFloat64(inst.cellsCreated); got != 2 {
		t.Errorf("cells_created_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(inst.cellsActive); got != 1 {
		t.Errorf("cells_active = %v, want 1", got)
	}
}

func TestPrometheusNotifyPass(t *testing.T) {
	inst := newTestInstrument(t)

	inst.NotifyPass("counter", 3, time.Millisecond)
	inst.NotifyPass("counter", 2, time.Millisecond)

	if got := testutil.ToFloat64(inst.notifyPasses.WithLabelValues("counter")); got != 2 {
		t.Errorf("notify_passes_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(inst.notifyObservers.WithLabelValues("counter")); got != 5 {
		t.Errorf("observers_notified_total = %v, want 5", got)
	}
}

func TestPrometheusObserverPanic(t *testing.T) {
	inst := newTestInstrument(t)

	inst.ObserverPanic("counter")

	if got := testutil.ToFloat64(inst.observerPanics.WithLabelValues("counter")); got != 1 {
		t.Errorf("observer_panics_total = %v, want 1", got)
	}
}

func TestPrometheusTaskRun(t *testing.T) {
	inst := newTestInstrument(t)

	inst.TaskRun("fetch", nil, time.Millisecond)
	inst.TaskRun("fetch", errors.New("boom"), time.Millisecond)

	if got := testutil.ToFloat64(inst.taskRuns.WithLabelValues("fetch", "success")); got != 1 {
		t.Errorf("task_runs_total{status=success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(inst.taskRuns.WithLabelValues("fetch", "error")); got != 1 {
		t.Errorf("task_runs_total{status=error} = %v, want 1", got)
	}
}

func TestPrometheusWithCells(t *testing.T) {
	inst := newTestInstrument(t)
	scope := quanta.NewScope(nil, quanta.ScopeInstrument(inst))
	defer scope.Dispose()

	scope.Run(func() {
		c := quanta.NewCell(0, quanta.WithName("hits"))
		c.Watch(func(int) {})
		c.Set(1)
		c.Set(2)
	})

	if got := testutil.ToFloat64(inst.cellsCreated); got != 1 {
		t.Errorf("cells_created_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(inst.notifyPasses.WithLabelValues("hits")); got != 2 {
		t.Errorf("notify_passes_total = %v, want 2", got)
	}
}

func TestPrometheusNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	inst := Prometheus(WithRegistry(reg), WithNamespace("myapp"), WithSubsystem("state"))

	inst.CellCreated("a")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "myapp_state_cells_active" {
			found = true
		}
	}
	if !found {
		t.Error("expected metric myapp_state_cells_active to be registered")
	}
}
