package quanta

import "log"

// Sink receives observer failure reports. A cell reports each panicking
// observer exactly once per notification pass; nothing else flows
// through this interface.
//
// Sinks are injected per cell (WithSink) or per scope (ScopeSink).
// Cells without an injected sink fall back to a standard-log sink so
// failures are never silently dropped.
type Sink interface {
	ObserverPanic(cell string, recovered any)
}

// LogSink writes one line per observer panic via the standard logger.
type LogSink struct{}

func (LogSink) ObserverPanic(cell string, recovered any) {
	log.Printf("quanta: observer panic in %s: %v", cell, recovered)
}

// NopSink discards all reports. Useful in tests that deliberately
// provoke observer panics.
type NopSink struct{}

func (NopSink) ObserverPanic(string, any) {}

var defaultSink Sink = LogSink{}
