package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (Q001-Q019)
	// ============================================

	"Q001": {
		Category: CategoryRuntime,
		Message:  "Observer panicked during notification",
		Detail:   "An observer panicked while handling a cell change. The panic was recovered and the remaining observers were still notified; check the diagnostic sink output for the panic value.",
		DocURL:   "https://quanta.dev/docs/errors/Q001",
	},
	"Q002": {
		Category: CategoryRuntime,
		Message:  "Cell disposed",
		Detail:   "The cell has been disposed. Writes still store the value but no observers are notified.",
		DocURL:   "https://quanta.dev/docs/errors/Q002",
	},
	"Q003": {
		Category: CategoryRuntime,
		Message:  "Scope disposed",
		Detail:   "The scope has been disposed. Cells created inside it are disposed with it; create a fresh scope instead of reusing a disposed one.",
		DocURL:   "https://quanta.dev/docs/errors/Q003",
	},
	"Q004": {
		Category: CategoryRuntime,
		Message:  "Derived cell re-entered its own computation",
		Detail:   "A derived cell's compute function read the derived cell itself, directly or through another cell. The stale value was returned to break the cycle.",
		DocURL:   "https://quanta.dev/docs/errors/Q004",
	},

	// ============================================
	// Persistence Errors (Q020-Q039)
	// ============================================

	"Q020": {
		Category: CategoryPersist,
		Message:  "Snapshot not found",
		Detail:   "No snapshot exists under the requested key in the configured store.",
		DocURL:   "https://quanta.dev/docs/errors/Q020",
	},
	"Q021": {
		Category: CategoryPersist,
		Message:  "Snapshot decode failed",
		Detail:   "The stored snapshot is not valid JSON, or an entry does not match its cell's value type.",
		DocURL:   "https://quanta.dev/docs/errors/Q021",
	},
	"Q022": {
		Category: CategoryPersist,
		Message:  "Snapshot store unavailable",
		Detail:   "The snapshot store could not be reached. For S3 stores, check credentials, region, and bucket name.",
		DocURL:   "https://quanta.dev/docs/errors/Q022",
	},

	// ============================================
	// Config Errors (Q040-Q059)
	// ============================================

	"Q040": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No quanta.json was found in the current directory or any parent directory.",
		DocURL:   "https://quanta.dev/docs/errors/Q040",
	},
	"Q041": {
		Category: CategoryConfig,
		Message:  "Config file invalid",
		Detail:   "quanta.json could not be parsed as JSON.",
		DocURL:   "https://quanta.dev/docs/errors/Q041",
	},
	"Q042": {
		Category: CategoryConfig,
		Message:  "Config value out of range",
		Detail:   "A configuration value is outside its allowed range.",
		DocURL:   "https://quanta.dev/docs/errors/Q042",
	},

	// ============================================
	// Inspector Errors (Q060-Q079)
	// ============================================

	"Q060": {
		Category: CategoryInspect,
		Message:  "Inspector failed to start",
		Detail:   "The inspector HTTP server could not bind its address. The port may be in use.",
		DocURL:   "https://quanta.dev/docs/errors/Q060",
	},

	// ============================================
	// CLI Errors (Q080-Q099)
	// ============================================

	"Q080": {
		Category: CategoryCLI,
		Message:  "Unknown command",
		Detail:   "The command is not recognized. Run 'quanta --help' for the list of commands.",
		DocURL:   "https://quanta.dev/docs/errors/Q080",
	},
}

// Lookup returns the template for a registered code.
func Lookup(code string) (ErrorTemplate, bool) {
	template, ok := registry[code]
	return template, ok
}
