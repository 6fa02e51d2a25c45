package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rowsweep/internal/classifier"
	"rowsweep/internal/config"
	"rowsweep/internal/delqueue"
	"rowsweep/internal/keys"
	"rowsweep/internal/logging"
	"rowsweep/internal/notifications"
	"rowsweep/internal/sheet"
	"rowsweep/internal/statestore"
)

// Summary is what one sync run accomplished.
type Summary struct {
	Scanned     int
	Archive     int
	Relocations int
	Duplicates  int
	Rejected    int
	Queued      int
}

// Orchestrator runs the classifier over the source tab, routes matched rows to
// the destination tabs, and replaces the deletion queue.
type Orchestrator struct {
	cfg    *config.Config
	sheets sheet.Store
	store  statestore.Store
	queue  *delqueue.Queue
	sender notifications.Sender
	logger *slog.Logger
	now    func() time.Time
}

// Option customizes orchestrator construction.
type Option func(*Orchestrator)

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator builds a sync orchestrator over the given stores.
func NewOrchestrator(cfg *config.Config, sheets sheet.Store, store statestore.Store, sender notifications.Sender, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:    cfg,
		sheets: sheets,
		store:  store,
		queue:  delqueue.New(store),
		sender: sender,
		logger: logging.WithComponent(logger, "sync"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one sync pass. On failure an error report goes out and the
// deletion queue and any in-flight cleanup state are left untouched, so
// pending deletions are never silently dropped.
func (o *Orchestrator) Run(ctx context.Context, runID string, lockAcquired bool) (*Summary, error) {
	summary, err := o.run(ctx, runID, lockAcquired)
	if err != nil {
		subject, body := notifications.BuildErrorReport("sync", runID, err)
		if sendErr := o.sender.Send(ctx, subject, body); sendErr != nil {
			o.logger.Error("error report delivery failed", logging.Error(sendErr))
		}
		return nil, err
	}
	return summary, nil
}

func (o *Orchestrator) run(ctx context.Context, runID string, lockAcquired bool) (*Summary, error) {
	started := o.now()
	sourceTab := o.cfg.Sheet.SourceTab

	header, rows, err := o.readSource(ctx, sourceTab)
	if err != nil {
		return nil, err
	}
	cctx, err := classifier.NewContext(header, o.cfg, started)
	if err != nil {
		return nil, err
	}

	existing, err := o.destinationKeys(ctx)
	if err != nil {
		return nil, err
	}

	result := classifier.Run(cctx, rows, existing)
	o.logger.Info("classification finished",
		logging.String(logging.FieldRunID, runID),
		logging.Int("scanned", result.Scanned),
		logging.Int("archive", len(result.RoutedArchive)),
		logging.Int("relocations", len(result.RoutedRelocations)),
		logging.Int("duplicates", result.Duplicates),
		logging.Int("rejected", result.Rejected))

	// Blank moved-on cells get the run date, stamped before the append so the
	// destinations need no read-back.
	movedOn := started.UTC().Format("2006-01-02")
	if col, ok := header.Lookup(o.cfg.Sheet.MovedOnHeader); ok {
		stampMovedOn(result.RoutedArchive, col, movedOn)
		stampMovedOn(result.RoutedRelocations, col, movedOn)
	}

	if len(result.RoutedArchive) > 0 {
		if err := o.sheets.AppendRows(ctx, o.cfg.Sheet.ArchiveTab, result.RoutedArchive); err != nil {
			return nil, fmt.Errorf("append to %s: %w", o.cfg.Sheet.ArchiveTab, err)
		}
	}
	if len(result.RoutedRelocations) > 0 {
		if err := o.sheets.AppendRows(ctx, o.cfg.Sheet.RelocationsTab, result.RoutedRelocations); err != nil {
			return nil, fmt.Errorf("append to %s: %w", o.cfg.Sheet.RelocationsTab, err)
		}
	}

	queued, err := o.queue.Replace(ctx, result.QueueKeys)
	if err != nil {
		return nil, err
	}
	// A fresh sync supersedes any partially completed cleanup cycle.
	if err := o.store.Delete(ctx, statestore.KeyCleanupState); err != nil {
		return nil, fmt.Errorf("discard stale cleanup state: %w", err)
	}

	report := notifications.SyncReport{
		RunID:        runID,
		StartedAt:    started,
		LockAcquired: lockAcquired,
		Archive:      len(result.RoutedArchive),
		Relocations:  len(result.RoutedRelocations),
		Duplicates:   result.Duplicates,
		Rejected:     result.Rejected,
		Queued:       queued,
	}
	for _, exception := range result.Exceptions {
		report.Exceptions = append(report.Exceptions, notifications.ReportLine{
			Key:  exception.Key,
			Note: exception.Reason,
		})
	}
	subject, body := notifications.BuildSyncReport(report)
	if err := o.sender.Send(ctx, subject, body); err != nil {
		o.logger.Error("sync report delivery failed", logging.Error(err))
	}

	return &Summary{
		Scanned:     result.Scanned,
		Archive:     len(result.RoutedArchive),
		Relocations: len(result.RoutedRelocations),
		Duplicates:  result.Duplicates,
		Rejected:    result.Rejected,
		Queued:      queued,
	}, nil
}

// readSource returns the source header and every data row.
func (o *Orchestrator) readSource(ctx context.Context, tab string) (*sheet.Header, [][]string, error) {
	last, err := o.sheets.LastRowIndex(ctx, tab)
	if err != nil {
		return nil, nil, fmt.Errorf("source extent: %w", err)
	}
	if last < 1 {
		return nil, nil, fmt.Errorf("source tab %q is empty", tab)
	}
	headerRows, err := o.sheets.ReadRows(ctx, tab, 1, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	header := sheet.NewHeader(headerRows[0])
	if last < 2 {
		return header, nil, nil
	}
	rows, err := o.sheets.ReadRows(ctx, tab, 2, last-1)
	if err != nil {
		return nil, nil, fmt.Errorf("read source rows: %w", err)
	}
	return header, rows, nil
}

// destinationKeys collects the normalized keys already present in either
// destination tab. A destination without the key column contributes nothing.
func (o *Orchestrator) destinationKeys(ctx context.Context) (map[string]struct{}, error) {
	existing := map[string]struct{}{}
	for _, tab := range []string{o.cfg.Sheet.ArchiveTab, o.cfg.Sheet.RelocationsTab} {
		last, err := o.sheets.LastRowIndex(ctx, tab)
		if err != nil {
			return nil, fmt.Errorf("extent of %s: %w", tab, err)
		}
		if last < 2 {
			continue
		}
		headerRows, err := o.sheets.ReadRows(ctx, tab, 1, 1)
		if err != nil {
			return nil, fmt.Errorf("read %s header: %w", tab, err)
		}
		keyCol, ok := sheet.NewHeader(headerRows[0]).Lookup(o.cfg.Sheet.KeyHeader)
		if !ok {
			continue
		}
		rows, err := o.sheets.ReadRows(ctx, tab, 2, last-1)
		if err != nil {
			return nil, fmt.Errorf("read %s rows: %w", tab, err)
		}
		for _, row := range rows {
			if key := keys.Normalize(sheet.Cell(row, keyCol)); key != "" {
				existing[key] = struct{}{}
			}
		}
	}
	return existing, nil
}

// stampMovedOn fills blank moved-on cells in place, widening short rows as
// needed.
func stampMovedOn(rows [][]string, col int, date string) {
	for i, row := range rows {
		for len(row) <= col {
			row = append(row, "")
		}
		if row[col] == "" {
			row[col] = date
		}
		rows[i] = row
	}
}
