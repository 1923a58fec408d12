// Package logging assembles structured slog loggers and formatting helpers used
// across workshopdl.
//
// It owns the console and JSON handlers, fans each record out to the terminal
// and the per-run log file, and exposes context-aware helpers so download code
// tags log lines with run IDs, workshop item IDs, and attempt numbers. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
