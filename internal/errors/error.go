package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryRuntime Category = "runtime"
	CategoryPersist Category = "persist"
	CategoryConfig  Category = "config"
	CategoryInspect Category = "inspect"
	CategoryCLI     Category = "cli"
)

// QuantaError is a structured error with a code, suggestions, and
// documentation.
type QuantaError struct {
	// Code is a unique error identifier (e.g., "Q001").
	Code string

	// Category is the error type (runtime, persist, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Cell is the name of the cell involved, if any.
	Cell string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *QuantaError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *QuantaError) Unwrap() error {
	return e.Wrapped
}

// WithCell records the cell the error relates to.
func (e *QuantaError) WithCell(name string) *QuantaError {
	e.Cell = name
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *QuantaError) WithSuggestion(s string) *QuantaError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *QuantaError) WithDetail(d string) *QuantaError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *QuantaError) Wrap(err error) *QuantaError {
	e.Wrapped = err
	return e
}

// New creates a QuantaError from a registered error code.
func New(code string) *QuantaError {
	template, ok := registry[code]
	if !ok {
		return &QuantaError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &QuantaError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new QuantaError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *QuantaError {
	return &QuantaError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a QuantaError.
func FromError(err error, code string) *QuantaError {
	if err == nil {
		return nil
	}
	if qe, ok := err.(*QuantaError); ok {
		return qe
	}
	return New(code).Wrap(err)
}
