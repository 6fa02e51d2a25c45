// Package syncer implements the producer half of the pipeline: one run
// classifies every source row, copies routed rows to the destination tabs,
// stamps derived defaults, and replaces the deletion queue for the cleanup
// cycle to drain.
package syncer
