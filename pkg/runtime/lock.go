package runtime

import (
	"sync"
	"time"
)

// Lock is a binary mutual-exclusion handle. It is not reentrant: a task
// acquiring a lock it already holds deadlocks, which is a documented
// limitation of the language.
type Lock struct {
	mu   sync.Mutex
	cond *sync.Cond
	held bool
}

// NewLock creates a free lock.
func NewLock() *Lock {
	l := &Lock{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Acquire blocks the calling task while the lock is held elsewhere.
func (l *Lock) Acquire() {
	l.mu.Lock()
	for l.held {
		l.cond.Wait()
	}
	l.held = true
	l.mu.Unlock()
}

// TryAcquire takes the lock when it is free, reporting whether it did.
func (l *Lock) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return false
	}
	l.held = true
	return true
}

// AcquireTimeout polls for the lock until the timeout elapses, reporting
// whether it was taken.
func (l *Lock) AcquireTimeout(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if l.TryAcquire() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}

// Release frees the lock and wakes exactly one blocked waiter. Releasing a
// lock that is not held is a caller error.
func (l *Lock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		return ErrReleaseOfFreeLock
	}
	l.held = false
	l.cond.Signal()
	return nil
}

// Held reports the current state; it is advisory only and may be stale by
// the time the caller acts on it.
func (l *Lock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}
