package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rowsweep/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := (&cfg).Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[sheet]
source_tab = "Members"
key_header = "ID"

[cleanup]
chunk_size = 10
max_passes = 3

[store]
backend = "sqlite"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Sheet.SourceTab != "Members" || cfg.Sheet.KeyHeader != "ID" {
		t.Fatalf("sheet overrides not applied: %+v", cfg.Sheet)
	}
	if cfg.Cleanup.ChunkSize != 10 || cfg.Cleanup.MaxPasses != 3 {
		t.Fatalf("cleanup overrides not applied: %+v", cfg.Cleanup)
	}
	// Untouched sections keep defaults.
	if cfg.Rules.TargetStatus != "dropped" {
		t.Fatalf("expected default target status, got %q", cfg.Rules.TargetStatus)
	}
}

func TestLoadRejectsBadBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[store]\nbackend = \"mysql\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

func TestLoadRequiresPostgresDSN(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[store]\nbackend = \"postgres\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error when postgres_dsn missing")
	}
}

func TestValidateWindowAgainstTTL(t *testing.T) {
	cfg := config.Default()
	cfg.Cleanup.EditWindowSeconds = 7200
	cfg.Cleanup.EditsTTLHours = 1
	if err := (&cfg).Validate(); err == nil {
		t.Fatal("expected error when edit window is not below TTL")
	}
}

func TestCreateSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[cleanup]") {
		t.Fatal("sample config missing cleanup section")
	}
}
