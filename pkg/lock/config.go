package lock

import "time"

type Config struct {
	TTL            time.Duration `env:"LOCK_TTL" envDefault:"10s"`              // TTL is the default lease applied by callers that don't size their own.
	AcquireTimeout time.Duration `env:"LOCK_ACQUIRE_TIMEOUT" envDefault:"5s"`   // AcquireTimeout bounds how long Acquire waits for a contended lock.
	RetryInterval  time.Duration `env:"LOCK_RETRY_INTERVAL" envDefault:"25ms"`  // RetryInterval is the poll interval while a lock is contended.
	KeyPrefix      string        `env:"LOCK_KEY_PREFIX" envDefault:"roomkit:lock:"` // KeyPrefix namespaces lock keys in the shared backend.
}

// DefaultConfig returns the config used when none is supplied.
func DefaultConfig() Config {
	return Config{
		TTL:            10 * time.Second,
		AcquireTimeout: 5 * time.Second,
		RetryInterval:  25 * time.Millisecond,
		KeyPrefix:      "roomkit:lock:",
	}
}
