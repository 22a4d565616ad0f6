package observe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/quanta-dev/quanta/pkg/quanta"
)

// MetricsConfig configures the Prometheus instrument.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "quanta").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for notify pass and task
	// durations. Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus instrument.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "quanta",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// PromInstrument is a quanta.Instrument backed by Prometheus metrics.
// Create one per registry with Prometheus().
type PromInstrument struct {
	cellsActive     prometheus.Gauge
	cellsCreated    prometheus.Counter
	notifyPasses    *prometheus.CounterVec
	notifyDuration  *prometheus.HistogramVec
	notifyObservers *prometheus.CounterVec
	observerPanics  *prometheus.CounterVec
	taskRuns        *prometheus.CounterVec
	taskDuration    *prometheus.HistogramVec
}

// Prometheus creates a quanta.Instrument that records metrics for cell
// lifecycle, notify passes, observer panics, and task runs.
//
// Metrics collected (with the default namespace):
//   - quanta_cells_active: Gauge of live cells
//   - quanta_cells_created_total: Counter of cells ever created
//   - quanta_notify_passes_total: Counter of notify passes by cell
//   - quanta_notify_duration_seconds: Histogram of notify pass duration
//   - quanta_observers_notified_total: Counter of observer invocations
//   - quanta_observer_panics_total: Counter of recovered observer panics
//   - quanta_task_runs_total: Counter of task runs by task and status
//   - quanta_task_duration_seconds: Histogram of task run duration
//
// Cell and task names are used as label values, so keep them
// low-cardinality; name cells with quanta.WithName.
func Prometheus(opts ...MetricsOption) *PromInstrument {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &PromInstrument{
		cellsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cells_active",
			Help:        "Number of live cells",
			ConstLabels: config.ConstLabels,
		}),

		cellsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cells_created_total",
			Help:        "Total number of cells created",
			ConstLabels: config.ConstLabels,
		}),

		notifyPasses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notify_passes_total",
			Help:        "Total number of notify passes by cell",
			ConstLabels: config.ConstLabels,
		}, []string{"cell"}),

		notifyDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notify_duration_seconds",
			Help:        "Notify pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"cell"}),

		notifyObservers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "observers_notified_total",
			Help:        "Total observer invocations by cell",
			ConstLabels: config.ConstLabels,
		}, []string{"cell"}),

		observerPanics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "observer_panics_total",
			Help:        "Total recovered observer panics by cell",
			ConstLabels: config.ConstLabels,
		}, []string{"cell"}),

		taskRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "task_runs_total",
			Help:        "Total task runs by task and status",
			ConstLabels: config.ConstLabels,
		}, []string{"task", "status"}),

		taskDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "task_duration_seconds",
			Help:        "Task run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"task"}),
	}
}

var _ quanta.Instrument = (*PromInstrument)(nil)

// CellCreated implements quanta.Instrument.
func (p *PromInstrument) CellCreated(cell string) {
	p.cellsCreated.Inc()
	p.cellsActive.Inc()
}

// CellDisposed implements quanta.Instrument.
func (p *PromInstrument) CellDisposed(cell string) {
	p.cellsActive.Dec()
}

// NotifyPass implements quanta.Instrument.
func (p *PromInstrument) NotifyPass(cell string, observers int, d time.Duration) {
	p.notifyPasses.WithLabelValues(cell).Inc()
	p.notifyDuration.WithLabelValues(cell).Observe(d.Seconds())
	p.notifyObservers.WithLabelValues(cell).Add(float64(observers))
}

// ObserverPanic implements quanta.Instrument.
func (p *PromInstrument) ObserverPanic(cell string) {
	p.observerPanics.WithLabelValues(cell).Inc()
}

// TaskRun implements quanta.Instrument.
func (p *PromInstrument) TaskRun(task string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.taskRuns.WithLabelValues(task, status).Inc()
	p.taskDuration.WithLabelValues(task).Observe(d.Seconds())
}
