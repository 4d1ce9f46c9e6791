// Package config provides type-safe environment variable loading with
// caching using Go generics. Each configuration type is loaded once per
// process and cached for subsequent calls.
//
// A .env file, if present, is loaded automatically on first use. Struct
// fields are parsed from the environment via caarlos0/env tags:
//
//	type StorageConfig struct {
//		Dir string        `env:"ERPAUTH_STORAGE_DIR" envDefault:"auth_sessions"`
//		TTL time.Duration `env:"ERPAUTH_SESSION_TTL" envDefault:"720h"`
//	}
//
//	var cfg StorageConfig
//	config.MustLoad(&cfg)
package config

import (
	"errors"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParse is returned when the environment cannot be parsed into the
// target struct, e.g. a required variable is missing or a value has the
// wrong type.
var ErrParse = errors.New("failed to parse environment configuration")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> parsed config value
)

// Load populates cfg from the environment, returning a cached copy when
// the same type was loaded before. The first call in the process also
// loads a .env file if one exists; its absence is not an error.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	typ := reflect.TypeOf(*cfg)
	if cached, ok := cache.Load(typ); ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParse, err)
	}

	// Concurrent first loads may parse twice; both see the same
	// environment, so whichever copy lands in the cache is equivalent.
	cache.Store(typ, *cfg)
	return nil
}

// MustLoad is Load that panics on failure. Intended for process startup
// where a missing required variable is a deployment error.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
