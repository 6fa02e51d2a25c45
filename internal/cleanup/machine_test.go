package cleanup_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"rowsweep/internal/cleanup"
	"rowsweep/internal/config"
	"rowsweep/internal/delqueue"
	"rowsweep/internal/logging"
	"rowsweep/internal/recentedits"
	"rowsweep/internal/sheet"
	"rowsweep/internal/statestore"
	"rowsweep/internal/testsupport"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func seedSource(t *testing.T, store sheet.Store, cfg *config.Config, keys ...string) {
	t.Helper()
	ctx := context.Background()
	rows := [][]string{{cfg.Sheet.KeyHeader, cfg.Sheet.StatusHeader}}
	for _, key := range keys {
		rows = append(rows, []string{key, "dropped"})
	}
	if err := store.AppendRows(ctx, cfg.Sheet.SourceTab, rows); err != nil {
		t.Fatalf("seed source tab: %v", err)
	}
}

func sourceKeys(t *testing.T, store sheet.Store, cfg *config.Config) []string {
	t.Helper()
	ctx := context.Background()
	last, err := store.LastRowIndex(ctx, cfg.Sheet.SourceTab)
	if err != nil {
		t.Fatalf("last row: %v", err)
	}
	if last < 2 {
		return nil
	}
	rows, err := store.ReadRows(ctx, cfg.Sheet.SourceTab, 2, last-1)
	if err != nil {
		t.Fatalf("read source rows: %v", err)
	}
	var got []string
	for _, row := range rows {
		got = append(got, sheet.Cell(row, 0))
	}
	return got
}

func TestEmptyQueueIsNoOp(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	states := testsupport.OpenStateStore(t, cfg)
	sheets := testsupport.OpenSheetStore(t, cfg)
	sender := &testsupport.RecordingSender{}

	machine := cleanup.NewMachine(cfg, sheets, states, sender, logging.NewNop())
	result, err := machine.RunPass(context.Background(), "run-1", true)
	if err != nil {
		t.Fatalf("RunPass failed: %v", err)
	}
	if result.Outcome != cleanup.OutcomeNoQueue {
		t.Fatalf("outcome = %v, want no-queue", result.Outcome)
	}
	if len(sender.Messages()) != 0 {
		t.Fatalf("no-queue invocation sent %d messages", len(sender.Messages()))
	}
	if _, ok, err := states.Get(context.Background(), statestore.KeyCleanupState); err != nil || ok {
		t.Fatalf("no-queue invocation must not create state (ok=%v err=%v)", ok, err)
	}
}

func TestSinglePassDeletesEverything(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t)
	states := testsupport.OpenStateStore(t, cfg)
	sheets := testsupport.OpenSheetStore(t, cfg)
	sender := &testsupport.RecordingSender{}

	seedSource(t, sheets, cfg, "K1", "keep-1", "K2", "keep-2", "K3")
	if _, err := delqueue.New(states).Replace(ctx, []string{"k1", "k2", "k3"}); err != nil {
		t.Fatalf("seed queue: %v", err)
	}

	machine := cleanup.NewMachine(cfg, sheets, states, sender, logging.NewNop())
	result, err := machine.RunPass(ctx, "run-1", true)
	if err != nil {
		t.Fatalf("RunPass failed: %v", err)
	}
	if result.Outcome != cleanup.OutcomeCompleted {
		t.Fatalf("outcome = %v, want completed", result.Outcome)
	}
	if result.Deleted != 3 || result.Remaining != 0 {
		t.Fatalf("deleted=%d remaining=%d", result.Deleted, result.Remaining)
	}

	remaining := sourceKeys(t, sheets, cfg)
	if len(remaining) != 2 || remaining[0] != "keep-1" || remaining[1] != "keep-2" {
		t.Fatalf("surviving source rows = %v", remaining)
	}

	messages := sender.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected exactly one report, got %d", len(messages))
	}
	if messages[0].Subject != "rowsweep cleanup: COMPLETE (3 deleted)" {
		t.Fatalf("subject = %q", messages[0].Subject)
	}
	for _, key := range []string{"K1", "K2", "K3"} {
		if !strings.Contains(messages[0].Body, key) {
			t.Fatalf("report body missing %s: %s", key, messages[0].Body)
		}
	}

	if queued, err := delqueue.New(states).Read(ctx); err != nil || queued != nil {
		t.Fatalf("queue not cleared after completion (queued=%v err=%v)", queued, err)
	}
	if _, ok, err := states.Get(ctx, statestore.KeyCleanupState); err != nil || ok {
		t.Fatalf("state not cleared after completion (ok=%v err=%v)", ok, err)
	}
}

func TestRecentEditDefersDeletionToNextPass(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t)
	cfg.Cleanup.ChunkSize = 2
	states := testsupport.OpenStateStore(t, cfg)
	sheets := testsupport.OpenSheetStore(t, cfg)
	sender := &testsupport.RecordingSender{}

	seedSource(t, sheets, cfg, "K1", "K2", "K3")
	if _, err := delqueue.New(states).Replace(ctx, []string{"K1", "K2", "K3"}); err != nil {
		t.Fatalf("seed queue: %v", err)
	}

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	if err := recentedits.New(states).Record(ctx, "K2", base.Add(-10*time.Second)); err != nil {
		t.Fatalf("record edit: %v", err)
	}

	machine := cleanup.NewMachine(cfg, sheets, states, sender, logging.NewNop(),
		cleanup.WithClock(fixedClock(base)))
	result, err := machine.RunPass(ctx, "run-1", true)
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	if result.Outcome != cleanup.OutcomePartial {
		t.Fatalf("first pass outcome = %v, want partial", result.Outcome)
	}
	if result.Deleted != 2 || result.Skipped != 1 || result.Remaining != 1 {
		t.Fatalf("first pass deleted=%d skipped=%d remaining=%d",
			result.Deleted, result.Skipped, result.Remaining)
	}
	if len(sender.Messages()) != 0 {
		t.Fatal("partial pass must not send a report")
	}
	if got := sourceKeys(t, sheets, cfg); len(got) != 1 || got[0] != "K2" {
		t.Fatalf("source rows after first pass = %v", got)
	}
	if _, ok, err := states.Get(ctx, statestore.KeyCleanupState); err != nil || !ok {
		t.Fatalf("expected persisted state between passes (ok=%v err=%v)", ok, err)
	}

	// Second invocation far outside the protection window.
	later := cleanup.NewMachine(cfg, sheets, states, sender, logging.NewNop(),
		cleanup.WithClock(fixedClock(base.Add(10*time.Minute))))
	result, err = later.RunPass(ctx, "run-2", true)
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if result.Outcome != cleanup.OutcomeCompleted {
		t.Fatalf("second pass outcome = %v, want completed", result.Outcome)
	}

	messages := sender.Messages()
	if len(messages) != 1 {
		t.Fatalf("cycle must produce exactly one report, got %d", len(messages))
	}
	if messages[0].Subject != "rowsweep cleanup: COMPLETE (3 deleted)" {
		t.Fatalf("subject = %q", messages[0].Subject)
	}
	if !strings.Contains(messages[0].Body, "K2") {
		t.Fatalf("report missing skipped-then-deleted key: %s", messages[0].Body)
	}
	if got := sourceKeys(t, sheets, cfg); len(got) != 0 {
		t.Fatalf("source rows after completion = %v", got)
	}
}

func TestNeverFoundKeysSurfaceAtExhaustion(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t)
	cfg.Cleanup.MaxPasses = 1
	states := testsupport.OpenStateStore(t, cfg)
	sheets := testsupport.OpenSheetStore(t, cfg)
	sender := &testsupport.RecordingSender{}

	seedSource(t, sheets, cfg, "K1")
	if _, err := delqueue.New(states).Replace(ctx, []string{"K1", "K9"}); err != nil {
		t.Fatalf("seed queue: %v", err)
	}

	machine := cleanup.NewMachine(cfg, sheets, states, sender, logging.NewNop())
	result, err := machine.RunPass(ctx, "run-1", true)
	if err != nil {
		t.Fatalf("RunPass failed: %v", err)
	}
	if result.Outcome != cleanup.OutcomeExhausted {
		t.Fatalf("outcome = %v, want exhausted", result.Outcome)
	}

	messages := sender.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected one report, got %d", len(messages))
	}
	if messages[0].Subject != "rowsweep cleanup: STOPPED (max passes reached)" {
		t.Fatalf("subject = %q", messages[0].Subject)
	}
	if !strings.Contains(messages[0].Body, "K9") {
		t.Fatalf("report missing never-found key: %s", messages[0].Body)
	}

	if queued, err := delqueue.New(states).Read(ctx); err != nil || queued != nil {
		t.Fatalf("queue must clear on exhaustion (queued=%v err=%v)", queued, err)
	}
	if _, ok, err := states.Get(ctx, statestore.KeyCleanupState); err != nil || ok {
		t.Fatalf("state must clear on exhaustion (ok=%v err=%v)", ok, err)
	}
}

func TestExhaustionWithPermanentlyProtectedKey(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t)
	cfg.Cleanup.MaxPasses = 2
	states := testsupport.OpenStateStore(t, cfg)
	sheets := testsupport.OpenSheetStore(t, cfg)
	sender := &testsupport.RecordingSender{}

	seedSource(t, sheets, cfg, "K1")
	if _, err := delqueue.New(states).Replace(ctx, []string{"K1"}); err != nil {
		t.Fatalf("seed queue: %v", err)
	}

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	tracker := recentedits.New(states)

	for pass := 1; pass <= 2; pass++ {
		if err := tracker.Record(ctx, "K1", base); err != nil {
			t.Fatalf("record edit: %v", err)
		}
		machine := cleanup.NewMachine(cfg, sheets, states, sender, logging.NewNop(),
			cleanup.WithClock(fixedClock(base.Add(time.Second))))
		result, err := machine.RunPass(ctx, "run", true)
		if err != nil {
			t.Fatalf("pass %d failed: %v", pass, err)
		}
		switch pass {
		case 1:
			if result.Outcome != cleanup.OutcomePartial {
				t.Fatalf("pass 1 outcome = %v, want partial", result.Outcome)
			}
		case 2:
			if result.Outcome != cleanup.OutcomeExhausted {
				t.Fatalf("pass 2 outcome = %v, want exhausted", result.Outcome)
			}
		}
	}

	// Row survived the whole cycle.
	if got := sourceKeys(t, sheets, cfg); len(got) != 1 || got[0] != "K1" {
		t.Fatalf("source rows = %v", got)
	}
	messages := sender.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected one report, got %d", len(messages))
	}
	if !strings.Contains(messages[0].Body, "K1") {
		t.Fatalf("report missing protected key: %s", messages[0].Body)
	}
}

func TestLockMissWarningInReport(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t)
	states := testsupport.OpenStateStore(t, cfg)
	sheets := testsupport.OpenSheetStore(t, cfg)
	sender := &testsupport.RecordingSender{}

	seedSource(t, sheets, cfg, "K1")
	if _, err := delqueue.New(states).Replace(ctx, []string{"K1"}); err != nil {
		t.Fatalf("seed queue: %v", err)
	}

	machine := cleanup.NewMachine(cfg, sheets, states, sender, logging.NewNop())
	if _, err := machine.RunPass(ctx, "run-1", false); err != nil {
		t.Fatalf("RunPass failed: %v", err)
	}
	messages := sender.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected one report, got %d", len(messages))
	}
	if !strings.Contains(messages[0].Body, "Warning") {
		t.Fatalf("expected contention warning in report: %s", messages[0].Body)
	}
}
