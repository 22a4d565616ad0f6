package observe

import (
	"time"

	"github.com/quanta-dev/quanta/pkg/quanta"
)

// Multi combines instruments into one that fans every report out to
// each of them. Nil entries are skipped.
func Multi(insts ...quanta.Instrument) quanta.Instrument {
	combined := make(multi, 0, len(insts))
	for _, inst := range insts {
		if inst != nil {
			combined = append(combined, inst)
		}
	}
	return combined
}

type multi []quanta.Instrument

func (m multi) CellCreated(cell string) {
	for _, inst := range m {
		inst.CellCreated(cell)
	}
}

func (m multi) CellDisposed(cell string) {
	for _, inst := range m {
		inst.CellDisposed(cell)
	}
}

func (m multi) NotifyPass(cell string, observers int, d time.Duration) {
	for _, inst := range m {
		inst.NotifyPass(cell, observers, d)
	}
}

func (m multi) ObserverPanic(cell string) {
	for _, inst := range m {
		inst.ObserverPanic(cell)
	}
}

func (m multi) TaskRun(task string, err error, d time.Duration) {
	for _, inst := range m {
		inst.TaskRun(task, err, d)
	}
}
