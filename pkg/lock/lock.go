// Package lock provides the process-wide submission lock. The whole
// submission pipeline (validate, availability re-check, number generation,
// persistence) runs under one coarse lock; reservation volume is low enough
// that serializing unrelated submissions is an acceptable trade for the
// no-duplicate-number and no-double-booking guarantees.
package lock

import (
	"context"
	"time"
)

// SubmissionLock is a mutual-exclusion lock with a bounded acquisition wait.
type SubmissionLock struct {
	sem     chan struct{}
	maxWait time.Duration
}

func NewSubmissionLock(maxWait time.Duration) *SubmissionLock {
	sem := make(chan struct{}, 1)
	sem <- struct{}{}
	return &SubmissionLock{
		sem:     sem,
		maxWait: maxWait,
	}
}

// Acquire blocks until the lock is held, the context is done, or the
// configured wait bound elapses. It returns false when the lock was not
// acquired; callers treat that as a transient-busy condition.
func (l *SubmissionLock) Acquire(ctx context.Context) bool {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case <-l.sem:
		return true
	case <-ctx.Done():
		return false
	case <-timer.C:
		return false
	}
}

// Release returns the lock. Must be called exactly once per successful
// Acquire, on every exit path.
func (l *SubmissionLock) Release() {
	select {
	case l.sem <- struct{}{}:
	default:
		panic("lock: release without acquire")
	}
}
