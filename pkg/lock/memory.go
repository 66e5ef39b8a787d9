package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	token   string
	expires time.Time
}

// MemoryLocker implements Locker for a single process. It honors the same
// contract as RedisLocker (TTL expiry, token-checked release) and is the
// backend of choice for tests and single-instance deployments.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryEntry
	cfg   Config
}

// NewMemoryLocker creates an in-process Locker.
func NewMemoryLocker(cfg Config) *MemoryLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = DefaultConfig().AcquireTimeout
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultConfig().RetryInterval
	}
	return &MemoryLocker{
		locks: make(map[string]memoryEntry),
		cfg:   cfg,
	}
}

// Acquire obtains the named lock, polling at RetryInterval while contended
// and failing with ErrLockTimeout once AcquireTimeout elapses. A non-positive
// ttl falls back to the configured lease.
func (l *MemoryLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (*Lock, error) {
	if ttl <= 0 {
		ttl = l.cfg.TTL
	}

	token := uuid.NewString()

	deadline := time.NewTimer(l.cfg.AcquireTimeout)
	defer deadline.Stop()
	retry := time.NewTicker(l.cfg.RetryInterval)
	defer retry.Stop()

	for {
		if l.tryAcquire(name, token, ttl) {
			return &Lock{name: name, token: token, release: l.releaseByToken}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, ErrLockTimeout
		case <-retry.C:
		}
	}
}

func (l *MemoryLocker) tryAcquire(name, token string, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, held := l.locks[name]
	if held && time.Now().Before(entry.expires) {
		return false
	}
	l.locks[name] = memoryEntry{token: token, expires: time.Now().Add(ttl)}
	return true
}

func (l *MemoryLocker) releaseByToken(_ context.Context, name, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, held := l.locks[name]; held && entry.token == token {
		delete(l.locks, name)
	}
	return nil
}
