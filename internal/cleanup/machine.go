package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"rowsweep/internal/config"
	"rowsweep/internal/delqueue"
	"rowsweep/internal/keys"
	"rowsweep/internal/logging"
	"rowsweep/internal/notifications"
	"rowsweep/internal/recentedits"
	"rowsweep/internal/sheet"
	"rowsweep/internal/statestore"
)

// Outcome is the result of one cleanup invocation.
type Outcome int

const (
	// OutcomeNoQueue means there was nothing to do; no state was created.
	OutcomeNoQueue Outcome = iota
	// OutcomePartial means work remains and the cycle awaits its next pass.
	// Partial passes are silent: no report goes out.
	OutcomePartial
	// OutcomeCompleted means every queued key was resolved.
	OutcomeCompleted
	// OutcomeExhausted means work remained when the pass budget ran out.
	OutcomeExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoQueue:
		return "no-queue"
	case OutcomePartial:
		return "partial"
	case OutcomeCompleted:
		return "completed"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// PassResult summarizes one invocation for the caller.
type PassResult struct {
	Outcome   Outcome
	Pass      int
	Deleted   int
	Skipped   int
	Remaining int
	Reported  bool
}

// Machine is the persisted multi-pass cleanup controller. Each invocation
// resumes from the last checkpoint, scans the source bottom-up in bounded
// chunks, removes eligible rows, and decides whether the cycle is done.
type Machine struct {
	cfg    *config.Config
	sheets sheet.Store
	store  statestore.Store
	queue  *delqueue.Queue
	edits  *recentedits.Tracker
	sender notifications.Sender
	logger *slog.Logger
	now    func() time.Time
}

// Option customizes machine construction.
type Option func(*Machine)

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// NewMachine builds a cleanup machine over the given stores.
func NewMachine(cfg *config.Config, sheets sheet.Store, store statestore.Store, sender notifications.Sender, logger *slog.Logger, opts ...Option) *Machine {
	m := &Machine{
		cfg:    cfg,
		sheets: sheets,
		store:  store,
		queue:  delqueue.New(store),
		edits:  recentedits.New(store),
		sender: sender,
		logger: logging.WithComponent(logger, "cleanup"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunPass executes one bounded-time pass. runID tags log and report output;
// lockAcquired carries the orchestrator's contention result into the final
// report.
func (m *Machine) RunPass(ctx context.Context, runID string, lockAcquired bool) (*PassResult, error) {
	now := m.now()

	if pruned, err := m.edits.Prune(ctx, now, m.cfg.EditsTTL()); err != nil {
		return nil, err
	} else if pruned > 0 {
		m.logger.Debug("pruned recent-edit entries", logging.Int("pruned", pruned))
	}

	state, err := loadState(ctx, m.store)
	if err != nil {
		return nil, err
	}
	if state == nil {
		queued, err := m.queue.Read(ctx)
		if err != nil {
			return nil, err
		}
		if len(queued) == 0 {
			m.logger.Info("deletion queue empty, nothing to clean",
				logging.String(logging.FieldRunID, runID))
			return &PassResult{Outcome: OutcomeNoQueue}, nil
		}
		state = newState(uuid.NewString(), queued, now)
		m.logger.Info("seeded cleanup cycle",
			logging.String(logging.FieldRunID, runID),
			logging.String(logging.FieldCycleID, state.CycleID),
			logging.Int("queued", len(queued)))
	}

	state.Passes++
	m.logger.Info("pass started",
		logging.String(logging.FieldEventType, "pass_start"),
		logging.String(logging.FieldRunID, runID),
		logging.String(logging.FieldCycleID, state.CycleID),
		logging.Int(logging.FieldPass, state.Passes),
		logging.Int("remaining", len(state.Remaining)))

	scanned, deleted, skipped, scanErr := m.scan(ctx, state, now)
	if scanErr != nil {
		if state.Passes >= m.cfg.Cleanup.MaxPasses {
			// A poisoned cycle must not retry forever: force the terminal
			// report and clear everything.
			result := m.finalize(ctx, state, runID, lockAcquired, OutcomeExhausted, scanErr)
			return result, scanErr
		}
		// State stands at the last completed chunk; the next scheduled
		// invocation retries from there.
		m.logger.Error("pass aborted, will retry next invocation",
			logging.String(logging.FieldCycleID, state.CycleID),
			logging.Int(logging.FieldPass, state.Passes),
			logging.Error(scanErr))
		return nil, scanErr
	}

	state.PassSummaries = append(state.PassSummaries, PassSummary{
		Pass:           state.Passes,
		ScannedChunks:  scanned,
		Deleted:        deleted,
		Skipped:        skipped,
		RemainingAfter: len(state.Remaining),
		EndedAt:        m.now().UTC(),
	})
	if err := state.save(ctx, m.store); err != nil {
		return nil, err
	}

	m.logger.Info("pass finished",
		logging.String(logging.FieldEventType, "pass_end"),
		logging.String(logging.FieldCycleID, state.CycleID),
		logging.Int(logging.FieldPass, state.Passes),
		logging.Int("chunks", scanned),
		logging.Int("deleted", deleted),
		logging.Int("skipped", skipped),
		logging.Int("remaining", len(state.Remaining)))

	switch {
	case len(state.Remaining) == 0:
		return m.finalize(ctx, state, runID, lockAcquired, OutcomeCompleted, nil), nil
	case state.Passes >= m.cfg.Cleanup.MaxPasses:
		return m.finalize(ctx, state, runID, lockAcquired, OutcomeExhausted, nil), nil
	default:
		// Partial passes stay silent so the cycle sends exactly one report.
		return &PassResult{
			Outcome:   OutcomePartial,
			Pass:      state.Passes,
			Deleted:   deleted,
			Skipped:   skipped,
			Remaining: len(state.Remaining),
		}, nil
	}
}

// scan walks the source bottom-up in chunks, removing eligible rows and
// checkpointing after every chunk so a budget cutoff loses minimal progress.
func (m *Machine) scan(ctx context.Context, state *State, started time.Time) (scanned, deleted, skipped int, err error) {
	deadline := started.Add(m.cfg.PassBudget())
	sourceTab := m.cfg.Sheet.SourceTab

	lastRow, err := m.sheets.LastRowIndex(ctx, sourceTab)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("source extent: %w", err)
	}
	if lastRow < 2 {
		return 0, 0, 0, nil
	}

	headerRows, err := m.sheets.ReadRows(ctx, sourceTab, 1, 1)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("read header: %w", err)
	}
	keyCol, err := sheet.NewHeader(headerRows[0]).Require(m.cfg.Sheet.KeyHeader)
	if err != nil {
		return 0, 0, 0, err
	}

	edits, err := m.edits.Snapshot(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	window := m.cfg.EditWindow()
	chunkSize := m.cfg.Cleanup.ChunkSize

	// Bottom-up: deleting higher rows first keeps the indices of unprocessed
	// lower rows stable.
	for end := lastRow; end >= 2 && len(state.Remaining) > 0; end -= chunkSize {
		start := end - chunkSize + 1
		if start < 2 {
			start = 2
		}

		rows, err := m.sheets.ReadRows(ctx, sourceTab, start, end-start+1)
		if err != nil {
			return scanned, deleted, skipped, fmt.Errorf("read chunk at row %d: %w", start, err)
		}

		var marked []int
		for j := len(rows) - 1; j >= 0; j-- {
			key := keys.Normalize(sheet.Cell(rows[j], keyCol))
			if key == "" || !state.Remaining[key] {
				continue
			}
			if editedAt, ok := edits[key]; ok && recentedits.ProtectedAt(editedAt, m.now(), window) {
				skipped++
				state.addSkipNote(key,
					fmt.Sprintf("edited %s ago, left for next pass", m.now().Sub(editedAt).Round(time.Second)),
					m.cfg.Cleanup.NotesCap)
				continue
			}
			marked = append(marked, start+j)
			delete(state.Remaining, key)
			state.Deleted[key] = true
			deleted++
		}

		if err := m.deleteBlocks(ctx, sourceTab, marked); err != nil {
			return scanned, deleted, skipped, err
		}
		scanned++

		if err := state.save(ctx, m.store); err != nil {
			return scanned, deleted, skipped, err
		}

		if m.now().After(deadline) {
			m.logger.Warn("pass budget exhausted mid-scan",
				logging.String(logging.FieldCycleID, state.CycleID),
				logging.Int(logging.FieldPass, state.Passes),
				logging.Int("last_chunk_start", start))
			break
		}
	}

	return scanned, deleted, skipped, nil
}

// deleteBlocks collapses marked row indices (descending) into maximal
// contiguous blocks and removes each with one bulk call. Higher blocks go
// first so lower indices stay valid.
func (m *Machine) deleteBlocks(ctx context.Context, tab string, marked []int) error {
	if len(marked) == 0 {
		return nil
	}
	sort.Sort(sort.Reverse(sort.IntSlice(marked)))

	blockEnd := marked[0]
	blockStart := marked[0]
	flush := func() error {
		return m.sheets.DeleteRowBlock(ctx, tab, blockStart, blockEnd-blockStart+1)
	}
	for _, row := range marked[1:] {
		if row == blockStart-1 {
			blockStart = row
			continue
		}
		if err := flush(); err != nil {
			return fmt.Errorf("delete rows %d-%d: %w", blockStart, blockEnd, err)
		}
		blockEnd = row
		blockStart = row
	}
	if err := flush(); err != nil {
		return fmt.Errorf("delete rows %d-%d: %w", blockStart, blockEnd, err)
	}
	return nil
}

// finalize emits the single consolidated cycle report and clears the queue
// and state. Completed and Exhausted both land here; partial passes never do.
func (m *Machine) finalize(ctx context.Context, state *State, runID string, lockAcquired bool, outcome Outcome, passErr error) *PassResult {
	report := notifications.CleanupReport{
		RunID:        runID,
		CycleID:      state.CycleID,
		StartedAt:    state.StartedAt,
		LockAcquired: lockAcquired,
		Exhausted:    outcome == OutcomeExhausted,
		Passes:       state.Passes,
		Deleted:      state.deletedAll(),
		NotFound:     state.notFound(),
	}
	if passErr != nil {
		report.Err = passErr.Error()
	}
	for _, note := range state.SkippedRecentEdits {
		report.Skipped = append(report.Skipped, notifications.ReportLine{Key: note.Key, Note: note.Note})
	}
	for _, summary := range state.PassSummaries {
		report.PassLines = append(report.PassLines, fmt.Sprintf(
			"pass %d: %d chunks, %d deleted, %d skipped, %d remaining",
			summary.Pass, summary.ScannedChunks, summary.Deleted, summary.Skipped, summary.RemainingAfter))
	}

	subject, body := notifications.BuildCleanupReport(report)
	if err := m.sender.Send(ctx, subject, body); err != nil {
		m.logger.Error("cleanup report delivery failed", logging.Error(err))
	}

	if err := m.queue.Clear(ctx); err != nil {
		m.logger.Error("failed to clear deletion queue", logging.Error(err))
	}
	if err := clearState(ctx, m.store); err != nil {
		m.logger.Error("failed to clear cleanup state", logging.Error(err))
	}

	m.logger.Info("cleanup cycle finished",
		logging.String(logging.FieldEventType, "cycle_end"),
		logging.String(logging.FieldCycleID, state.CycleID),
		logging.String("outcome", outcome.String()),
		logging.Int(logging.FieldPass, state.Passes),
		logging.Int("deleted", len(report.Deleted)),
		logging.Int("not_found", len(report.NotFound)))

	return &PassResult{
		Outcome:   outcome,
		Pass:      state.Passes,
		Deleted:   len(report.Deleted),
		Skipped:   len(report.Skipped),
		Remaining: len(state.Remaining),
		Reported:  true,
	}
}
