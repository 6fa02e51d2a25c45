package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"rowsweep/internal/config"
	"rowsweep/internal/joblock"
	"rowsweep/internal/logging"
	"rowsweep/internal/notifications"
	"rowsweep/internal/sheet"
	"rowsweep/internal/statestore"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// jobEnv bundles everything a job command needs: resolved config, logger, and
// the opened stores.
type jobEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	sheets sheet.Store
	states statestore.Store
	sender notifications.Sender
}

// withEnv opens the stores, runs fn, and closes everything afterwards.
func (c *commandContext) withEnv(fn func(*jobEnv) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	states, err := statestore.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = states.Close() }()

	sheets, err := sheet.OpenSQLite(cfg.SheetDBPath())
	if err != nil {
		return err
	}
	defer func() { _ = sheets.Close() }()

	return fn(&jobEnv{
		cfg:    cfg,
		logger: logger,
		sheets: sheets,
		states: states,
		sender: notifications.NewSender(cfg),
	})
}

// acquireJobLock takes the shared best-effort lock. The boolean tells the job
// whether it actually holds it; a miss is logged and carried into the report,
// never fatal.
func acquireJobLock(ctx context.Context, env *jobEnv) (*joblock.Lock, bool) {
	lock := joblock.New(env.cfg.Paths.LockFile, env.cfg.LockPoll())
	result := lock.Acquire(ctx, env.cfg.LockWait())
	if result.Err != nil {
		env.logger.Warn("job lock error, proceeding without it",
			logging.String("path", lock.Path()),
			logging.Error(result.Err))
		return lock, false
	}
	if !result.Acquired {
		env.logger.Warn("job lock held elsewhere, proceeding anyway",
			logging.String("path", lock.Path()),
			logging.Duration("waited", env.cfg.LockWait()))
	}
	return lock, result.Acquired
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatAge(at time.Time, now time.Time) string {
	return now.Sub(at).Round(time.Second).String()
}
