package recentedits_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"rowsweep/internal/recentedits"
	"rowsweep/internal/statestore"
)

func newTestTracker(t *testing.T) *recentedits.Tracker {
	t.Helper()
	store, err := statestore.OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return recentedits.New(store)
}

func TestRecordAndProtected(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := tracker.Record(ctx, " k2 ", now.Add(-10*time.Second)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	protected, err := tracker.Protected(ctx, "K2", now, time.Minute)
	if err != nil {
		t.Fatalf("Protected failed: %v", err)
	}
	if !protected {
		t.Fatal("expected key edited 10s ago to be protected by a 60s window")
	}

	protected, err = tracker.Protected(ctx, "K2", now.Add(2*time.Minute), time.Minute)
	if err != nil {
		t.Fatalf("Protected failed: %v", err)
	}
	if protected {
		t.Fatal("expected protection to lapse after the window")
	}

	protected, err = tracker.Protected(ctx, "unknown", now, time.Minute)
	if err != nil {
		t.Fatalf("Protected failed: %v", err)
	}
	if protected {
		t.Fatal("unknown key must not be protected")
	}
}

func TestRecordIgnoresEmptyKey(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	if err := tracker.Record(ctx, "   ", time.Now()); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	size, err := tracker.Size(ctx)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 0 {
		t.Fatalf("expected empty map, got %d entries", size)
	}
}

func TestPruneRemovesExpiredEntries(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := tracker.Record(ctx, "old", now.Add(-72*time.Hour)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := tracker.Record(ctx, "fresh", now.Add(-time.Hour)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	removed, err := tracker.Prune(ctx, now, 48*time.Hour)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("Prune removed %d, want 1", removed)
	}

	snapshot, err := tracker.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if _, ok := snapshot["OLD"]; ok {
		t.Fatal("expired entry survived prune")
	}
	if _, ok := snapshot["FRESH"]; !ok {
		t.Fatal("fresh entry removed by prune")
	}
}

func TestPruneEmptyMapIsNoop(t *testing.T) {
	tracker := newTestTracker(t)

	removed, err := tracker.Prune(context.Background(), time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 0 {
		t.Fatalf("Prune removed %d from empty map", removed)
	}
}
