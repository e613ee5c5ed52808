// Package logging constructs slog loggers for the CLI and pipeline.
//
// It supports a human-readable console format and a JSON format, writes to
// stderr and an optional log file simultaneously, and maps the
// verbose/quiet/silent flags onto slog levels. Component loggers carry a
// standardized "component" attribute that the console handler hoists into
// the message prefix.
package logging
