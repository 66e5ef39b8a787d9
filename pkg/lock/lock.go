package lock

import (
	"context"
	"sync"
	"time"
)

// Locker acquires named, TTL-bounded mutual-exclusion locks. Implementations
// must guarantee at most one holder per name at a time across every process
// sharing the same backend.
type Locker interface {
	// Acquire blocks until the lock for name is obtained or the configured
	// acquisition timeout elapses, returning ErrLockTimeout in the latter
	// case. The TTL bounds how long a crashed holder can keep the name
	// locked; holders whose work may outrun the TTL lose mutual exclusion.
	Acquire(ctx context.Context, name string, ttl time.Duration) (*Lock, error)
}

// Lock is a held lock. Callers must release it on every exit path:
//
//	l, err := locker.Acquire(ctx, name, ttl)
//	if err != nil {
//	    return err
//	}
//	defer l.Release(ctx)
type Lock struct {
	name     string
	token    string
	released sync.Once
	release  func(ctx context.Context, name, token string) error
}

// Name returns the lock's name.
func (l *Lock) Name() string { return l.name }

// Release releases the lock. It is idempotent and safe to call after the TTL
// already expired; releasing a lock that has since been acquired by another
// holder is a no-op.
func (l *Lock) Release(ctx context.Context) error {
	var err error
	l.released.Do(func() {
		err = l.release(ctx, l.name, l.token)
	})
	return err
}
