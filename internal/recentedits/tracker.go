// Package recentedits maintains the pruned, persisted mapping from normalized
// key to last-external-mutation timestamp. The edit observer writes it; the
// cleanup machine reads it to avoid deleting rows someone just touched.
//
// The protection window is deliberately short relative to the TTL: the window
// guards freshly edited rows, the TTL only bounds map growth.
package recentedits

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rowsweep/internal/keys"
	"rowsweep/internal/statestore"
)

// Tracker reads and writes the persisted recent-edit map.
type Tracker struct {
	store statestore.Store
}

// New returns a Tracker backed by the given state store.
func New(store statestore.Store) *Tracker {
	return &Tracker{store: store}
}

// Record upserts the last-edit timestamp for key. Keys that normalize to
// empty are ignored.
func (t *Tracker) Record(ctx context.Context, rawKey string, now time.Time) error {
	key := keys.Normalize(rawKey)
	if key == "" {
		return nil
	}
	edits, err := t.load(ctx)
	if err != nil {
		return err
	}
	edits[key] = now.UTC()
	return t.save(ctx, edits)
}

// Prune removes entries older than ttl and returns the number removed.
// Called once per cleanup invocation before any deletion decision.
func (t *Tracker) Prune(ctx context.Context, now time.Time, ttl time.Duration) (int, error) {
	edits, err := t.load(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for key, editedAt := range edits {
		if now.Sub(editedAt) >= ttl {
			delete(edits, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, t.save(ctx, edits)
}

// Protected reports whether key was edited within window before now.
func (t *Tracker) Protected(ctx context.Context, rawKey string, now time.Time, window time.Duration) (bool, error) {
	edits, err := t.load(ctx)
	if err != nil {
		return false, err
	}
	editedAt, ok := edits[keys.Normalize(rawKey)]
	return ok && ProtectedAt(editedAt, now, window), nil
}

// Snapshot returns a copy of the whole map for callers that gate many keys in
// one pass without re-reading the store per key.
func (t *Tracker) Snapshot(ctx context.Context) (map[string]time.Time, error) {
	return t.load(ctx)
}

// Size returns the number of tracked keys.
func (t *Tracker) Size(ctx context.Context) (int, error) {
	edits, err := t.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(edits), nil
}

// ProtectedAt reports whether an edit at editedAt still protects a key at now
// for the given window.
func ProtectedAt(editedAt, now time.Time, window time.Duration) bool {
	return now.Sub(editedAt) < window
}

func (t *Tracker) load(ctx context.Context) (map[string]time.Time, error) {
	value, ok, err := t.store.Get(ctx, statestore.KeyRecentEdits)
	if err != nil {
		return nil, fmt.Errorf("load recent edits: %w", err)
	}
	edits := map[string]time.Time{}
	if !ok {
		return edits, nil
	}
	if err := json.Unmarshal([]byte(value), &edits); err != nil {
		return nil, fmt.Errorf("decode recent edits: %w", err)
	}
	return edits, nil
}

func (t *Tracker) save(ctx context.Context, edits map[string]time.Time) error {
	payload, err := json.Marshal(edits)
	if err != nil {
		return fmt.Errorf("encode recent edits: %w", err)
	}
	if err := t.store.Put(ctx, statestore.KeyRecentEdits, string(payload)); err != nil {
		return fmt.Errorf("persist recent edits: %w", err)
	}
	return nil
}
