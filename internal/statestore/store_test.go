package statestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"rowsweep/internal/statestore"
)

func openTestStore(t *testing.T) statestore.Store {
	t.Helper()
	store, err := statestore.OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGetMissingKey(t *testing.T) {
	store := openTestStore(t)

	value, ok, err := store.Get(context.Background(), statestore.KeyDeletionQueue)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok || value != "" {
		t.Fatalf("expected absent key, got ok=%v value=%q", ok, value)
	}
}

func TestPutOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "k", `{"a":1}`); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, "k", `{"a":2}`); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	value, ok, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || value != `{"a":2}` {
		t.Fatalf("expected overwritten value, got ok=%v value=%q", ok, value)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "k", "v"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if _, ok, err := store.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected key gone, got ok=%v err=%v", ok, err)
	}
}
