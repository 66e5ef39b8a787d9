// Package lock provides named, TTL-bounded mutual-exclusion locks shared
// across process instances.
//
// The redis implementation uses the SET NX PX idiom: acquisition writes a
// random token under the lock key with the lease TTL, and release deletes the
// key only if the token still matches, so a holder that outlived its lease
// cannot release a successor's lock. Acquisition polls at a fixed retry
// interval until it succeeds or the acquisition timeout elapses
// (ErrLockTimeout).
//
// The TTL exists so that a crashed holder cannot block a name forever. A
// holder whose guarded section may outrun the TTL risks losing mutual
// exclusion and must size its sections conservatively.
//
// MemoryLocker implements the same contract in-process for tests and
// single-instance deployments.
//
//	l, err := locker.Acquire(ctx, "room:lobby", 10*time.Second)
//	if err != nil {
//	    return err // ErrLockTimeout when contended too long
//	}
//	defer l.Release(ctx)
package lock
