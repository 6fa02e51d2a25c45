// Package testsupport holds shared fixtures for package tests: throwaway
// configurations, store openers, and a recording notification sender.
package testsupport

import (
	"path/filepath"
	"testing"

	"rowsweep/internal/config"
)

// NewConfig returns a validated configuration rooted in a temp directory.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.LockFile = filepath.Join(base, "rowsweep.lock")
	cfg.Paths.EditLog = filepath.Join(base, "edits.log")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default test config invalid: %v", err)
	}
	return &cfg
}
