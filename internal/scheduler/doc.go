// Package scheduler fans photo work items out to a bounded worker pool,
// records every outcome in the progress store, and halts dispatch once
// failures exceed the configured budget.
package scheduler
