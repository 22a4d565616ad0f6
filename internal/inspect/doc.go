// Package inspect serves a live debugging view of registered cells
// over HTTP: a JSON listing of current values and a WebSocket stream
// of change events. Intended for development; mount it on a loopback
// port.
package inspect
