// Package joblock provides the best-effort mutual exclusion jobs attempt
// before running. Failure to acquire never blocks a job: the scheduler is
// assumed, not guaranteed, to serialize invocations, so contention is
// reported to the caller and execution proceeds.
package joblock

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Result tells the call site whether it holds the lock so it can decide how
// to proceed under contention instead of having the degradation hidden.
type Result struct {
	Acquired bool
	Err      error
}

// Lock is a file-based cooperative lock with bounded polling.
type Lock struct {
	flk  *flock.Flock
	poll time.Duration
	path string
}

// New builds a lock at path polling at the given interval.
func New(path string, poll time.Duration) *Lock {
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	return &Lock{flk: flock.New(path), poll: poll, path: path}
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Acquire polls for the lock until it is held, the wait budget is spent, or
// ctx is done. It never returns an error as a failure: the Result records
// what happened and the job carries on either way.
func (l *Lock) Acquire(ctx context.Context, wait time.Duration) Result {
	if dir := filepath.Dir(l.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{Err: err}
		}
	}

	deadline := time.Now().Add(wait)
	for {
		ok, err := l.flk.TryLock()
		if err != nil {
			return Result{Err: err}
		}
		if ok {
			return Result{Acquired: true}
		}
		if time.Now().After(deadline) {
			return Result{}
		}
		select {
		case <-ctx.Done():
			return Result{Err: ctx.Err()}
		case <-time.After(l.poll):
		}
	}
}

// Release drops the lock. Safe to call when the lock was never acquired.
func (l *Lock) Release() error {
	return l.flk.Unlock()
}
