// Package logging is the structured logger shared by the server, its
// transports and the storage layer. SlogLogger is the only implementation.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "user registered", "user_id", id)
//
// Secrets (passwords, hashes, tokens) must never be passed as values.
type Logger interface {
	// Debug logs diagnostic details, such as the reason a token was rejected.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs lifecycle events and successful operations.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs internal failures together with their cause.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
