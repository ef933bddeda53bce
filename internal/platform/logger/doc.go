// Package logger provides structured logging functionality for the application.
//
// It builds log/slog JSON loggers with a configurable level and carries
// request-scoped loggers through context.Context so that the store, service
// and API layers all log with the same request attributes.
package logger
