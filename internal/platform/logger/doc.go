// Package logger sets up the process-wide log/slog JSON logger and carries
// request-scoped loggers (trace and client ids attached) through
// context.Context.
package logger
