// Package logging is the logging seam of the account authority. The store
// and the CLI only see Logger; SlogLogger backs it with log/slog, and
// Discard serves tests and callers that pass no logger.
package logging

import "context"

// Logger writes leveled records with alternating key and value arguments:
//
//	log.Info(ctx, "invitation issued", "username", name, "roles", roles)
//
// Secrets such as passwords are never passed as values.
type Logger interface {
	// Debug logs diagnostic detail that is off by default.
	Debug(ctx context.Context, msg string, args ...any)

	// Info records a state transition.
	Info(ctx context.Context, msg string, args ...any)

	// Warn records a rejected request or a suspicious but allowed change.
	Warn(ctx context.Context, msg string, args ...any)

	// Error records an internal failure such as a broken random source.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}
