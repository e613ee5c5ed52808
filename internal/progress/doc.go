// Package progress persists per-photo processing state in SQLite so
// interrupted runs can resume without repeating finished work.
package progress
