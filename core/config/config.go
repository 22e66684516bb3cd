package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// cache stores loaded configurations keyed by their reflect.Type.
	cache sync.Map

	// dotenvOnce guards the one-time .env file load.
	dotenvOnce sync.Once
)

// Load populates cfg from environment variables using struct tags.
// Each configuration type is parsed only once per process; subsequent calls
// for the same type return the cached value, so all callers observe identical
// configuration regardless of later environment mutations.
//
// A .env file in the working directory is loaded on first use if present.
// A missing .env file is not an error.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	key := reflect.TypeOf(*cfg)
	if cached, ok := cache.Load(key); ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return errors.Join(fmt.Errorf("%w: %s", ErrParsingFailed, key), err)
	}

	// LoadOrStore keeps the first successfully parsed value under concurrent
	// loads, so every caller ends up with the same snapshot.
	cached, _ := cache.LoadOrStore(key, *cfg)
	*cfg = cached.(T)
	return nil
}

// MustLoad is like Load but panics on failure.
// Intended for application startup where a missing required variable
// should abort the process.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
