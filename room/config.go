package room

import "time"

type Config struct {
	LockTTL     time.Duration `env:"ROOM_LOCK_TTL" envDefault:"10s"`    // LockTTL is the lease on per-room locks; guarded sections must stay well inside it.
	AckTimeout  time.Duration `env:"ROOM_ACK_TIMEOUT" envDefault:"1s"`  // AckTimeout bounds the wait for a cluster leave acknowledgment.
	FanoutLimit int           `env:"ROOM_FANOUT_LIMIT" envDefault:"8"`  // FanoutLimit caps concurrently in-flight per-item work in bulk operations.
}

// DefaultConfig returns the config used when none is supplied.
func DefaultConfig() Config {
	return Config{
		LockTTL:     10 * time.Second,
		AckTimeout:  time.Second,
		FanoutLimit: 8,
	}
}

type StoreConfig struct {
	KeyPrefix string `env:"ROOM_KEY_PREFIX" envDefault:"roomkit:"` // KeyPrefix namespaces every key the redis store writes.
}

// DefaultStoreConfig returns the store config used when none is supplied.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{KeyPrefix: "roomkit:"}
}
