package observe

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quanta-dev/quanta/pkg/quanta"
)

// Default tracer name for quanta instrumentation.
const defaultTracerName = "quanta"

// OTelConfig configures the OpenTelemetry instrument.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "quanta").
	TracerName string

	// TraceNotifies emits a span per notify pass. Disabled by default;
	// hot cells can produce a lot of spans.
	TraceNotifies bool

	// Filter determines which cells and tasks to trace by name.
	// If nil, everything is traced.
	Filter func(name string) bool

	// AttributeExtractor adds custom attributes to every span, keyed
	// by the cell or task name.
	AttributeExtractor func(name string) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry instrument.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTraceNotifies enables a span per notify pass.
func WithTraceNotifies(enable bool) OTelOption {
	return func(c *OTelConfig) {
		c.TraceNotifies = enable
	}
}

// WithFilter sets a name filter for traced cells and tasks.
func WithFilter(filter func(name string) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(name string) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// TraceInstrument is a quanta.Instrument that emits OpenTelemetry
// spans for task runs and, optionally, notify passes.
//
// The tracer comes from the global OpenTelemetry tracer provider.
// Configure it in main() before creating cells:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
type TraceInstrument struct {
	config OTelConfig
}

// Tracing creates an OpenTelemetry-backed quanta.Instrument.
func Tracing(opts ...OTelOption) *TraceInstrument {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)
	return &TraceInstrument{config: config}
}

var _ quanta.Instrument = (*TraceInstrument)(nil)

func (t *TraceInstrument) traced(name string) bool {
	return t.config.Filter == nil || t.config.Filter(name)
}

func (t *TraceInstrument) attrs(name string, base ...attribute.KeyValue) []attribute.KeyValue {
	if t.config.AttributeExtractor != nil {
		base = append(base, t.config.AttributeExtractor(name)...)
	}
	return base
}

// CellCreated implements quanta.Instrument. Cell lifecycle is not
// traced; it carries no duration.
func (t *TraceInstrument) CellCreated(cell string) {}

// CellDisposed implements quanta.Instrument.
func (t *TraceInstrument) CellDisposed(cell string) {}

// NotifyPass implements quanta.Instrument. The pass already happened,
// so the span is reconstructed from its duration.
func (t *TraceInstrument) NotifyPass(cell string, observers int, d time.Duration) {
	if !t.config.TraceNotifies || !t.traced(cell) {
		return
	}

	end := time.Now()
	_, span := t.config.tracer.Start(
		context.Background(),
		fmt.Sprintf("quanta.notify %s", cell),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(end.Add(-d)),
		trace.WithAttributes(t.attrs(cell,
			attribute.String("quanta.cell", cell),
			attribute.Int("quanta.observers", observers),
		)...),
	)
	span.End(trace.WithTimestamp(end))
}

// ObserverPanic implements quanta.Instrument.
func (t *TraceInstrument) ObserverPanic(cell string) {
	if !t.traced(cell) {
		return
	}

	_, span := t.config.tracer.Start(
		context.Background(),
		fmt.Sprintf("quanta.observer_panic %s", cell),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(t.attrs(cell,
			attribute.String("quanta.cell", cell),
		)...),
	)
	span.SetStatus(codes.Error, "observer panic")
	span.End()
}

// TaskRun implements quanta.Instrument.
func (t *TraceInstrument) TaskRun(task string, err error, d time.Duration) {
	if !t.traced(task) {
		return
	}

	end := time.Now()
	_, span := t.config.tracer.Start(
		context.Background(),
		fmt.Sprintf("quanta.task %s", task),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(end.Add(-d)),
		trace.WithAttributes(t.attrs(task,
			attribute.String("quanta.task", task),
		)...),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(end))
}
