// Package config provides a type-safe, generic way to load application
// configuration from environment variables.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11` to
// deliver a small API that:
//
//   - Optionally loads values from one or more `.env` files.
//   - Parses the environment into any Go struct using `env` field tags.
//   - Exposes panicking helpers (MustLoadEnv, MustLoad) for configuration
//     the process cannot start without.
//
// # Usage
//
//	type LockConfig struct {
//	    TTL            time.Duration `env:"LOCK_TTL" envDefault:"10s"`
//	    AcquireTimeout time.Duration `env:"LOCK_ACQUIRE_TIMEOUT" envDefault:"5s"`
//	}
//
//	var cfg LockConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// # Error Handling
//
// The package defines sentinel errors comparable with errors.Is:
// ErrParsingConfig, ErrNilPointer, ErrEnvFileNotFound, ErrLoadingEnvFile.
package config
