package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStore()
	c.normalizeSheet()
	c.normalizeRules()
	c.normalizeNotify()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"paths.data_dir", &c.Paths.DataDir},
		{"paths.log_dir", &c.Paths.LogDir},
		{"paths.lock_file", &c.Paths.LockFile},
		{"paths.edit_log", &c.Paths.EditLog},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("normalize %s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeStore() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.Store.PostgresDSN = strings.TrimSpace(c.Store.PostgresDSN)
}

func (c *Config) normalizeSheet() {
	for _, value := range []*string{
		&c.Sheet.SourceTab,
		&c.Sheet.ArchiveTab,
		&c.Sheet.RelocationsTab,
		&c.Sheet.KeyHeader,
		&c.Sheet.StatusHeader,
		&c.Sheet.TypeHeader,
		&c.Sheet.ReviewHeader,
		&c.Sheet.PaymentHeaderPrefix,
		&c.Sheet.MovedOnHeader,
	} {
		*value = strings.TrimSpace(*value)
	}
}

func (c *Config) normalizeRules() {
	c.Rules.TargetStatus = strings.TrimSpace(c.Rules.TargetStatus)
	c.Rules.RelocationType = strings.TrimSpace(c.Rules.RelocationType)
}

func (c *Config) normalizeNotify() {
	c.Notify.Endpoint = strings.TrimSpace(c.Notify.Endpoint)
	recipients := c.Notify.Recipients[:0]
	for _, recipient := range c.Notify.Recipients {
		if trimmed := strings.TrimSpace(recipient); trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	c.Notify.Recipients = recipients
	if c.Notify.RequestTimeoutSeconds <= 0 {
		c.Notify.RequestTimeoutSeconds = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
