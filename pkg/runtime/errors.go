package runtime

import "errors"

// Sentinel errors surfaced to the dispatch layer. All of them are
// recoverable language-level conditions, never process-fatal.
var (
	ErrChannelNotFound   = errors.New("channel not found")
	ErrLockNotFound      = errors.New("lock not found")
	ErrDoubleClose       = errors.New("close of closed channel")
	ErrReleaseOfFreeLock = errors.New("release of unlocked lock")
)
