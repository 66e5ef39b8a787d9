package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while the caller still holds it, so a
// release arriving after TTL expiry cannot steal the lock from the next holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker on a shared redis backend using the
// SET NX PX idiom with a random per-acquisition token.
type RedisLocker struct {
	client redis.UniversalClient
	cfg    Config
}

// NewRedisLocker creates a Locker backed by the given redis client.
func NewRedisLocker(client redis.UniversalClient, cfg Config) *RedisLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = DefaultConfig().AcquireTimeout
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultConfig().RetryInterval
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &RedisLocker{client: client, cfg: cfg}
}

// Acquire obtains the named lock, polling at RetryInterval while contended
// and failing with ErrLockTimeout once AcquireTimeout elapses. A non-positive
// ttl falls back to the configured lease.
func (l *RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (*Lock, error) {
	if ttl <= 0 {
		ttl = l.cfg.TTL
	}

	key := l.cfg.KeyPrefix + name
	token := uuid.NewString()

	deadline := time.NewTimer(l.cfg.AcquireTimeout)
	defer deadline.Stop()
	retry := time.NewTicker(l.cfg.RetryInterval)
	defer retry.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, errors.Join(ErrAcquireFailed, err)
		}
		if ok {
			return &Lock{name: name, token: token, release: l.releaseByToken}, nil
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrLockTimeout, ctx.Err())
		case <-deadline.C:
			return nil, ErrLockTimeout
		case <-retry.C:
		}
	}
}

func (l *RedisLocker) releaseByToken(ctx context.Context, name, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.cfg.KeyPrefix + name}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return errors.Join(ErrReleaseFailed, err)
	}
	return nil
}
