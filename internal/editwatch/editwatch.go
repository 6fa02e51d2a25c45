// Package editwatch tails the append-only edit log and feeds the recent-edit
// tracker. The log is the integration point for whatever front end mutates
// the source tab: one line per edit, a timestamp and the edited key separated
// by a tab.
package editwatch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"rowsweep/internal/config"
	"rowsweep/internal/logging"
	"rowsweep/internal/recentedits"
	"rowsweep/internal/statestore"
)

// Watcher tails the edit log and records every edited key.
type Watcher struct {
	path    string
	tracker *recentedits.Tracker
	logger  *slog.Logger
	now     func() time.Time

	file    *os.File
	reader  *bufio.Reader
	pending string
}

// Option customizes watcher construction.
type Option func(*Watcher)

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) { w.now = now }
}

// New builds a watcher over the configured edit log.
func New(cfg *config.Config, store statestore.Store, logger *slog.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		path:    cfg.Paths.EditLog,
		tracker: recentedits.New(store),
		logger:  logging.WithComponent(logger, "editwatch"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run tails the log until ctx is done. The log file is created when missing
// and reopened when replaced, so log rotation does not stop the watch. Lines
// already present at startup are skipped: only edits made while watching are
// recent by definition.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.open(io.SeekEnd); err != nil {
		return err
	}
	defer w.close()

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer func() { _ = notify.Close() }()

	// Watch the directory, not the file: recreation after rotation would
	// silently detach a file-level watch.
	if err := notify.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.logger.Info("watching edit log", logging.String("path", w.path))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-notify.Events:
			if !ok {
				return nil
			}
			if event.Name != w.path {
				continue
			}
			switch {
			case event.Has(fsnotify.Write):
				if err := w.drain(ctx); err != nil {
					return err
				}
			case event.Has(fsnotify.Create):
				// Rotated: start over from the top of the new file.
				w.close()
				if err := w.open(io.SeekStart); err != nil {
					return err
				}
				if err := w.drain(ctx); err != nil {
					return err
				}
			}
		case err, ok := <-notify.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) open(whence int) error {
	file, err := os.OpenFile(w.path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open edit log: %w", err)
	}
	if _, err := file.Seek(0, whence); err != nil {
		_ = file.Close()
		return fmt.Errorf("seek edit log: %w", err)
	}
	w.file = file
	w.reader = bufio.NewReader(file)
	w.pending = ""
	return nil
}

func (w *Watcher) close() {
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
		w.reader = nil
	}
}

// drain consumes every complete line appended since the last event. A partial
// trailing line is held back until its newline arrives.
func (w *Watcher) drain(ctx context.Context) error {
	for {
		chunk, err := w.reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			w.pending += chunk
			return nil
		}
		if err != nil {
			return fmt.Errorf("read edit log: %w", err)
		}

		line := w.pending + chunk
		w.pending = ""
		key, editedAt := ParseLine(line, w.now())
		if key == "" {
			continue
		}
		if err := w.tracker.Record(ctx, key, editedAt); err != nil {
			return err
		}
		w.logger.Debug("edit recorded",
			logging.String(logging.FieldKey, key),
			logging.String("edited_at", editedAt.Format(time.RFC3339)))
	}
}

// ParseLine splits one edit-log line into its key and timestamp. The expected
// shape is "RFC3339<TAB>key"; a line holding only a key gets the fallback
// timestamp, as does one with an unparseable timestamp. Blank lines yield an
// empty key.
func ParseLine(line string, fallback time.Time) (string, time.Time) {
	trimmed := strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(trimmed) == "" {
		return "", time.Time{}
	}
	ts, key, found := strings.Cut(trimmed, "\t")
	if !found {
		return strings.TrimSpace(trimmed), fallback
	}
	editedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(ts))
	if err != nil {
		return strings.TrimSpace(key), fallback
	}
	return strings.TrimSpace(key), editedAt
}
