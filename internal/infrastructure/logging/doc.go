// Package logging provides structured logging built on log/slog.
//
// The Logger type wraps slog.Logger with service-level defaults: every
// record carries the service name and version, output format and level
// are driven by config.LoggingConfig, and a Default() logger is available
// for early startup before configuration has been loaded.
//
// Credentials, password hashes, and token contents must never be passed
// as log attributes. Log identifiers (principal IDs, record IDs, request
// IDs) instead.
package logging
