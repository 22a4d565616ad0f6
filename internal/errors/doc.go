// Package errors provides structured, actionable error messages for
// quanta tooling.
//
// Each error has a unique code (e.g., "Q001") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// Errors are organized into categories:
//   - runtime: cell and scope lifecycle errors
//   - persist: snapshot capture, restore, and store errors
//   - config: project configuration errors
//   - inspect: inspector server errors
//   - cli: command-line usage errors
//
// # Usage
//
//	err := errors.New("Q020").
//	    WithDetail("quanta.json contains invalid JSON").
//	    Wrap(parseErr)
//
//	fmt.Println(err.Format())
package errors
