// Package project walks a project tree of date directories containing
// group directories containing photos, applying the configured date
// format, group-ordering policy, and exclusion lists to produce a
// deterministic list of photos to process.
package project
