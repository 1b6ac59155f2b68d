// Package logging provides a tiny abstraction over structured loggers so
// downstream code can depend on a minimal interface (Logger) while callers
// plug in slog, zap or nothing at all. Non-fatal degradation paths across
// the engine log through this interface and are otherwise invisible to the
// end user.
package logging
