// Package workflow ties the cascade resolver, scanner, sampler, progress
// store, and scheduler into complete runs, with flock-based locking so
// only one run touches a project at a time.
package workflow
