// Package config loads, normalizes, and validates rowsweep configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads a single TOML file. The Config type centralizes every
// knob the sync and cleanup jobs need: tab and header names, routing
// literals, cleanup pass tuning, lock budgets, and report delivery.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
