// Package logging wires log/slog with taskline's console and JSON handlers.
//
// The console handler renders timestamp, level, component, message, then
// key=value attributes on a single line. Field name constants keep attribute
// keys consistent across components; NewComponentLogger stamps the component
// attribute once so call sites stay terse.
package logging
