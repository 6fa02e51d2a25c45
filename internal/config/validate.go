package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateSheet(); err != nil {
		return err
	}
	if err := c.validateRules(); err != nil {
		return err
	}
	if err := c.validateCleanup(); err != nil {
		return err
	}
	if err := c.validateLock(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "sqlite":
		return nil
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return errors.New("store.postgres_dsn must be set when store.backend is postgres")
		}
		return nil
	default:
		return fmt.Errorf("store.backend must be sqlite or postgres, got %q", c.Store.Backend)
	}
}

func (c *Config) validateSheet() error {
	required := map[string]string{
		"sheet.source_tab":      c.Sheet.SourceTab,
		"sheet.archive_tab":     c.Sheet.ArchiveTab,
		"sheet.relocations_tab": c.Sheet.RelocationsTab,
		"sheet.key_header":      c.Sheet.KeyHeader,
		"sheet.status_header":   c.Sheet.StatusHeader,
		"sheet.type_header":     c.Sheet.TypeHeader,
		"sheet.review_header":   c.Sheet.ReviewHeader,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s must be set", name)
		}
	}
	return nil
}

func (c *Config) validateRules() error {
	if c.Rules.TargetStatus == "" {
		return errors.New("rules.target_status must be set")
	}
	if c.Rules.RelocationType == "" {
		return errors.New("rules.relocation_type must be set")
	}
	return nil
}

func (c *Config) validateCleanup() error {
	if c.Cleanup.ChunkSize < 1 {
		return errors.New("cleanup.chunk_size must be at least 1")
	}
	if c.Cleanup.PassBudgetSeconds <= 0 {
		return errors.New("cleanup.pass_budget_seconds must be positive")
	}
	if c.Cleanup.MaxPasses < 1 {
		return errors.New("cleanup.max_passes must be at least 1")
	}
	if c.Cleanup.EditWindowSeconds <= 0 {
		return errors.New("cleanup.edit_window_seconds must be positive")
	}
	if c.Cleanup.EditsTTLHours <= 0 {
		return errors.New("cleanup.edits_ttl_hours must be positive")
	}
	if c.EditsTTL() <= c.EditWindow() {
		return errors.New("cleanup.edits_ttl_hours must exceed cleanup.edit_window_seconds")
	}
	if c.Cleanup.NotesCap < 1 {
		return errors.New("cleanup.notes_cap must be at least 1")
	}
	return nil
}

func (c *Config) validateLock() error {
	if c.Lock.WaitSeconds < 0 {
		return errors.New("lock.wait_seconds must not be negative")
	}
	if c.Lock.PollMillis <= 0 {
		return errors.New("lock.poll_millis must be positive")
	}
	return nil
}
