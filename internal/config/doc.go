// Package config loads, validates, and resolves framemill configuration.
//
// Settings cascade across four levels: command-line overrides, a group
// config file, a date config file, and the global config file at the
// project root, falling back to repository defaults. Resolution is
// per-option: a group file that sets a single option never blocks other
// options from falling through to less specific levels. The Resolver
// caches one immutable Settings value per (date, group) so work items can
// share it without synchronization.
//
// Options that only make sense at the project root (project path, database
// path, log destination, verbosity, workers, sample, max_processing_errors)
// are rejected with an error naming the file and option when they appear
// in a date or group file.
package config
