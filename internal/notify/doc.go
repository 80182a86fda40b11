// Package notify defines the notification port of the cart engine.
//
// A Sink receives short human-readable confirmations ("item added",
// "quantity increased") after each successful cart mutation. Sinks are
// purely observational: they must never block, never fail the operation
// that triggered them, and their absence must not change store behavior.
//
// Three implementations are provided:
//   - SlogSink: logs notifications through log/slog (production default)
//   - MemorySink: records notifications in order (tests, harness traces)
//   - NopSink: discards everything (headless contexts)
package notify
