package observe

import (
	"log"

	"github.com/quanta-dev/quanta/pkg/quanta"
)

// Sink returns a quanta.Sink that logs each recovered observer panic
// and counts it on the given instrument. Use it when a cell should
// report panics to metrics without carrying its own instrument:
//
//	inst := observe.Prometheus()
//	c := quanta.NewCell(0, quanta.WithSink(observe.Sink(inst)))
func Sink(inst quanta.Instrument) quanta.Sink {
	return instrumentSink{inst: inst}
}

type instrumentSink struct {
	inst quanta.Instrument
}

func (s instrumentSink) ObserverPanic(cell string, recovered any) {
	log.Printf("quanta: observer panic in %s: %v", cell, recovered)
	if s.inst != nil {
		s.inst.ObserverPanic(cell)
	}
}
