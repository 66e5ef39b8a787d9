package lock

import "errors"

var (
	// ErrLockTimeout is returned when a lock cannot be acquired within the acquisition timeout.
	ErrLockTimeout = errors.New("lock: acquisition timed out")

	// ErrAcquireFailed wraps backend errors during acquisition.
	ErrAcquireFailed = errors.New("lock: acquire failed")

	// ErrReleaseFailed wraps backend errors during release.
	ErrReleaseFailed = errors.New("lock: release failed")
)
