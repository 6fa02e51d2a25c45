// Package statestore persists the subsystem's singleton structures (deletion
// queue, cleanup state, recent-edit map) as opaque JSON values under
// well-known keys.
//
// Two backends are provided: SQLite (default, one local file per install) and
// Postgres for deployments that already run one. Each key has a single writer;
// there is no optimistic concurrency check, which is an accepted limitation of
// the soft-lock execution model.
package statestore
