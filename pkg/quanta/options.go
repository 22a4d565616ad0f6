package quanta

// CellOption is a functional option for configuring cells and notifiers.
type CellOption func(*cellOptions)

type cellOptions struct {
	name       string
	sink       Sink
	distinct   bool
	persistKey string
	ephemeral  bool
}

// WithName sets the cell's diagnostic name. Unnamed cells get an
// auto-generated "cell-<id>" name. The name appears in sink reports,
// telemetry, and the inspector.
func WithName(name string) CellOption {
	return func(o *cellOptions) {
		o.name = name
	}
}

// WithSink injects the diagnostic sink that receives observer panic
// reports for this cell, overriding the owning scope's sink.
func WithSink(sink Sink) CellOption {
	return func(o *cellOptions) {
		o.sink = sink
	}
}

// Distinct enables equality suppression: Set with a value equal to the
// current one (by the default equality, or WithEquals if configured)
// skips notification. Without this option every Set notifies, equal or
// not.
func Distinct() CellOption {
	return func(o *cellOptions) {
		o.distinct = true
	}
}

// PersistKey opts the cell into scope snapshots under an explicit,
// stable key. Cells without a key are never captured.
//
// Example:
//
//	userID := quanta.NewCell(0, quanta.PersistKey("user_id"))
func PersistKey(key string) CellOption {
	return func(o *cellOptions) {
		o.persistKey = key
	}
}

// Ephemeral excludes the cell from scope snapshots even if a helper
// assigned it a persist key. Use for cursor positions, hover state, and
// other UI ephemera.
func Ephemeral() CellOption {
	return func(o *cellOptions) {
		o.ephemeral = true
	}
}

func applyOptions(opts []CellOption) cellOptions {
	var options cellOptions
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
