// Package config loads environment-backed configuration structs. A .env file
// is read once per process if present; after that, values come from the
// environment via caarlos0/env struct tags.
package config

import (
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrNilPointer is returned when Load receives a nil destination.
	ErrNilPointer = errors.New("config: destination must be a non-nil pointer")

	// ErrParsingConfig wraps env parsing failures.
	ErrParsingConfig = errors.New("config: failed to parse environment")
)

var loadDotEnv sync.Once

// Load fills v from the environment.
//
//	type CacheConfig struct {
//		TTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`
//		RedisURL string        `env:"REDIS_URL"`
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	loadDotEnv.Do(func() {
		// Missing .env files are fine; the environment is authoritative.
		_ = godotenv.Load()
	})
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad is Load for program startup: misconfiguration should prevent
// boot, not surface later as runtime errors.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(err)
	}
}
