package testsupport

import (
	"testing"

	"rowsweep/internal/config"
	"rowsweep/internal/sheet"
	"rowsweep/internal/statestore"
)

// OpenStateStore opens the config's sqlite state store and closes it with the
// test.
func OpenStateStore(t *testing.T, cfg *config.Config) statestore.Store {
	t.Helper()
	store, err := statestore.OpenSQLite(cfg.StateDBPath())
	if err != nil {
		t.Fatalf("open state store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// OpenSheetStore opens the config's sqlite sheet store and closes it with the
// test.
func OpenSheetStore(t *testing.T, cfg *config.Config) *sheet.SQLiteStore {
	t.Helper()
	store, err := sheet.OpenSQLite(cfg.SheetDBPath())
	if err != nil {
		t.Fatalf("open sheet store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
