// Package delqueue persists the ordered, deduplicated set of keys awaiting
// removal from the source tab. The sync job replaces the queue wholesale; the
// cleanup cycle drains and finally clears it.
package delqueue

import (
	"context"
	"encoding/json"
	"fmt"

	"rowsweep/internal/keys"
	"rowsweep/internal/statestore"
)

// Queue is the persisted deletion queue. A key appears at most once,
// insertion order preserved.
type Queue struct {
	store statestore.Store
}

// New returns a Queue backed by the given state store.
func New(store statestore.Store) *Queue {
	return &Queue{store: store}
}

// Replace overwrites the queue with the given keys, normalizing each and
// dropping empties and case-insensitive duplicates while preserving
// first-seen order. There are no merge semantics. Returns the stored count.
func (q *Queue) Replace(ctx context.Context, rawKeys []string) (int, error) {
	deduped := Dedup(rawKeys)
	payload, err := json.Marshal(deduped)
	if err != nil {
		return 0, fmt.Errorf("encode deletion queue: %w", err)
	}
	if err := q.store.Put(ctx, statestore.KeyDeletionQueue, string(payload)); err != nil {
		return 0, fmt.Errorf("persist deletion queue: %w", err)
	}
	return len(deduped), nil
}

// Read returns the queued keys in order, nil when no queue exists.
func (q *Queue) Read(ctx context.Context) ([]string, error) {
	value, ok, err := q.store.Get(ctx, statestore.KeyDeletionQueue)
	if err != nil {
		return nil, fmt.Errorf("load deletion queue: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var queued []string
	if err := json.Unmarshal([]byte(value), &queued); err != nil {
		return nil, fmt.Errorf("decode deletion queue: %w", err)
	}
	return queued, nil
}

// Clear removes the queue. Called by the cleanup cycle on its terminal
// transition.
func (q *Queue) Clear(ctx context.Context) error {
	if err := q.store.Delete(ctx, statestore.KeyDeletionQueue); err != nil {
		return fmt.Errorf("clear deletion queue: %w", err)
	}
	return nil
}

// Dedup normalizes keys, drops empties, and removes duplicates while keeping
// first-seen order.
func Dedup(rawKeys []string) []string {
	seen := make(map[string]struct{}, len(rawKeys))
	deduped := make([]string, 0, len(rawKeys))
	for _, raw := range rawKeys {
		key := keys.Normalize(raw)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, key)
	}
	return deduped
}
