// Package logging wraps log/slog with the handlers and attribute helpers
// used across tilefetch. Components never log through a process-wide
// default; they receive a *slog.Logger and derive component loggers from
// it.
package logging
