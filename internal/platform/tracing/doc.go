// Package tracing configures OpenTelemetry tracing for the server.
package tracing
