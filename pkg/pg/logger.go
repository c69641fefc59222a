package pg

import "context"

// logger is the minimal structured-logging surface the migration runner
// needs; *slog.Logger satisfies it.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
