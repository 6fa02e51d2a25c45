// Command rowsweep runs the sync and cleanup jobs, the edit-log watcher, and
// assorted maintenance subcommands over a shared TOML configuration.
package main
