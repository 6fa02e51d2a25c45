package cleanup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rowsweep/internal/statestore"
)

// SkipNote records one conflict skip for the final report.
type SkipNote struct {
	Key  string `json:"key"`
	Note string `json:"note"`
}

// PassSummary is the persisted bookkeeping for one pass.
type PassSummary struct {
	Pass           int       `json:"pass"`
	ScannedChunks  int       `json:"scanned_chunks"`
	Deleted        int       `json:"deleted"`
	Skipped        int       `json:"skipped"`
	RemainingAfter int       `json:"remaining_after"`
	EndedAt        time.Time `json:"ended_at"`
}

// State is the persisted, process-wide cleanup cycle state. One cycle at a
// time; created when the first pass seeds from the deletion queue, destroyed
// on the terminal transition.
//
// Invariants: Remaining and Deleted are disjoint; their union is a subset of
// OriginalQueue. Keys never found in the source simply stay out of Deleted
// and surface as "not found" at finalization.
type State struct {
	CycleID            string          `json:"cycle_id"`
	OriginalQueue      []string        `json:"original_queue"`
	Remaining          map[string]bool `json:"remaining"`
	Deleted            map[string]bool `json:"deleted"`
	SkippedRecentEdits []SkipNote      `json:"skipped_recent_edits"`
	PassSummaries      []PassSummary   `json:"pass_summaries"`
	Passes             int             `json:"passes"`
	StartedAt          time.Time       `json:"started_at"`
}

func newState(cycleID string, queued []string, now time.Time) *State {
	state := &State{
		CycleID:       cycleID,
		OriginalQueue: append([]string{}, queued...),
		Remaining:     make(map[string]bool, len(queued)),
		Deleted:       map[string]bool{},
		StartedAt:     now.UTC(),
	}
	for _, key := range queued {
		state.Remaining[key] = true
	}
	return state
}

// Load returns the persisted cycle state, nil when no cycle is active.
// Read-only callers (status rendering) use this; the machine goes through
// loadState directly.
func Load(ctx context.Context, store statestore.Store) (*State, error) {
	return loadState(ctx, store)
}

func loadState(ctx context.Context, store statestore.Store) (*State, error) {
	value, ok, err := store.Get(ctx, statestore.KeyCleanupState)
	if err != nil {
		return nil, fmt.Errorf("load cleanup state: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var state State
	if err := json.Unmarshal([]byte(value), &state); err != nil {
		return nil, fmt.Errorf("decode cleanup state: %w", err)
	}
	if state.Remaining == nil {
		state.Remaining = map[string]bool{}
	}
	if state.Deleted == nil {
		state.Deleted = map[string]bool{}
	}
	return &state, nil
}

func (s *State) save(ctx context.Context, store statestore.Store) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode cleanup state: %w", err)
	}
	if err := store.Put(ctx, statestore.KeyCleanupState, string(payload)); err != nil {
		return fmt.Errorf("persist cleanup state: %w", err)
	}
	return nil
}

func clearState(ctx context.Context, store statestore.Store) error {
	if err := store.Delete(ctx, statestore.KeyCleanupState); err != nil {
		return fmt.Errorf("clear cleanup state: %w", err)
	}
	return nil
}

func (s *State) addSkipNote(key, note string, limit int) {
	if len(s.SkippedRecentEdits) >= limit {
		return
	}
	s.SkippedRecentEdits = append(s.SkippedRecentEdits, SkipNote{Key: key, Note: note})
}

// deletedAll returns the resolved keys in original queue order.
func (s *State) deletedAll() []string {
	var deleted []string
	for _, key := range s.OriginalQueue {
		if s.Deleted[key] {
			deleted = append(deleted, key)
		}
	}
	return deleted
}

// notFound returns queue keys never seen in the source. They may have been
// removed by another actor between sync and cleanup; that is informational,
// not an error.
func (s *State) notFound() []string {
	var missing []string
	for _, key := range s.OriginalQueue {
		if !s.Deleted[key] {
			missing = append(missing, key)
		}
	}
	return missing
}
