package quanta

import "time"

// Instrument receives lifecycle and dispatch telemetry from cells and
// task runners. Implementations live outside this package (see
// pkg/observe for Prometheus and OpenTelemetry backends); the core only
// calls through this seam and treats a nil Instrument as "off".
type Instrument interface {
	// CellCreated and CellDisposed bracket a cell or notifier lifetime.
	CellCreated(cell string)
	CellDisposed(cell string)

	// NotifyPass reports one completed synchronous dispatch: how many
	// observers ran and how long the whole pass took.
	NotifyPass(cell string, observers int, d time.Duration)

	// ObserverPanic reports one recovered observer failure.
	ObserverPanic(cell string)

	// TaskRun reports one completed asynchronous task execution.
	TaskRun(task string, err error, d time.Duration)
}
