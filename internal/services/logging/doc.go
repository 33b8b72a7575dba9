// Package logging configures the daemon's structured logging.
//
// The package builds slog handlers based on configuration and can emit logs
// to multiple sinks:
//   - Console (human-friendly pretty output)
//   - File (JSON)
//
// Apply swaps the active handler set in place, so a config hot-reload changes
// log output without replacing the *slog.Logger handed out at startup.
package logging
