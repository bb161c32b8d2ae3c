// Package logger provides structured JSON logging built on log/slog,
// request-scoped loggers carried in context and a handler that stamps
// records with the active trace.
package logger
