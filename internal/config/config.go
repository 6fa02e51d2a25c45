package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file location configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	LockFile string `toml:"lock_file"`
	EditLog  string `toml:"edit_log"`
}

// Store selects and configures the persistent state backend.
type Store struct {
	Backend     string `toml:"backend"`
	PostgresDSN string `toml:"postgres_dsn"`
}

// Sheet names the tabs and header cells the jobs operate on.
type Sheet struct {
	SourceTab           string `toml:"source_tab"`
	ArchiveTab          string `toml:"archive_tab"`
	RelocationsTab      string `toml:"relocations_tab"`
	KeyHeader           string `toml:"key_header"`
	StatusHeader        string `toml:"status_header"`
	TypeHeader          string `toml:"type_header"`
	ReviewHeader        string `toml:"review_header"`
	PaymentHeaderPrefix string `toml:"payment_header_prefix"`
	MovedOnHeader       string `toml:"moved_on_header"`
}

// Rules holds the routing literals the classifier compares against.
type Rules struct {
	TargetStatus   string `toml:"target_status"`
	RelocationType string `toml:"relocation_type"`
}

// Cleanup contains tuning for the multi-pass cleanup cycle.
type Cleanup struct {
	ChunkSize         int `toml:"chunk_size"`
	PassBudgetSeconds int `toml:"pass_budget_seconds"`
	MaxPasses         int `toml:"max_passes"`
	EditWindowSeconds int `toml:"edit_window_seconds"`
	EditsTTLHours     int `toml:"edits_ttl_hours"`
	NotesCap          int `toml:"notes_cap"`
}

// Lock contains the best-effort job lock polling budget.
type Lock struct {
	WaitSeconds int `toml:"wait_seconds"`
	PollMillis  int `toml:"poll_millis"`
}

// Notify contains report delivery settings. When Endpoint is empty the
// notification sender degrades to a noop and reports are only logged.
type Notify struct {
	Endpoint              string   `toml:"endpoint"`
	Recipients            []string `toml:"recipients"`
	RequestTimeoutSeconds int      `toml:"request_timeout_seconds"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for rowsweep.
//
// Sections by subsystem:
//   - Paths: data/log directories, lock file, edit-observer log
//   - Store: state backend selection (sqlite or postgres)
//   - Sheet: tab and header names in the tabular store
//   - Rules: target status and destination-B type literal
//   - Cleanup: chunking, pass budget, retry and protection windows
//   - Lock: cooperative lock acquisition budget
//   - Notify: report delivery endpoint and recipients
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Store   Store   `toml:"store"`
	Sheet   Sheet   `toml:"sheet"`
	Rules   Rules   `toml:"rules"`
	Cleanup Cleanup `toml:"cleanup"`
	Lock    Lock    `toml:"lock"`
	Notify  Notify  `toml:"notify"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/rowsweep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("rowsweep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories required for job execution.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SheetDBPath returns the sqlite database path backing the tabular store.
func (c *Config) SheetDBPath() string {
	return filepath.Join(c.Paths.DataDir, "sheet.db")
}

// StateDBPath returns the sqlite database path backing the state store.
func (c *Config) StateDBPath() string {
	return filepath.Join(c.Paths.DataDir, "state.db")
}

// PassBudget returns the per-pass runtime budget for a cleanup invocation.
func (c *Config) PassBudget() time.Duration {
	return time.Duration(c.Cleanup.PassBudgetSeconds) * time.Second
}

// EditWindow returns the protection window after an external edit.
func (c *Config) EditWindow() time.Duration {
	return time.Duration(c.Cleanup.EditWindowSeconds) * time.Second
}

// EditsTTL returns the retention for recent-edit entries.
func (c *Config) EditsTTL() time.Duration {
	return time.Duration(c.Cleanup.EditsTTLHours) * time.Hour
}

// LockWait returns the total time budget for acquiring the job lock.
func (c *Config) LockWait() time.Duration {
	return time.Duration(c.Lock.WaitSeconds) * time.Second
}

// LockPoll returns the interval between lock acquisition attempts.
func (c *Config) LockPoll() time.Duration {
	return time.Duration(c.Lock.PollMillis) * time.Millisecond
}

// NotifyTimeout returns the HTTP timeout for report delivery.
func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.Notify.RequestTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
