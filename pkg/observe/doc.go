// Package observe provides ready-made telemetry backends for the
// quanta.Instrument seam: a Prometheus instrument, an OpenTelemetry
// tracing instrument, and a fan-out for combining them.
//
// Instruments are plain values; pass one to quanta.NewScope via
// quanta.ScopeInstrument, or to a task.Runner via task.WithInstrument:
//
//	inst := observe.Prometheus(observe.WithNamespace("myapp"))
//	scope := quanta.NewScope(nil, quanta.ScopeInstrument(inst))
//
// Expose the metrics endpoint with promhttp.Handler() as usual.
package observe
