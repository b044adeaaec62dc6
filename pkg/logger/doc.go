// Package logger builds slog.Logger instances with environment presets
// (development text output, production JSON output), static service
// attributes, and context extractors that inject request-scoped values into
// every record.
package logger
