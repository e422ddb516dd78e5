package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// cache keeps one parsed copy per configuration type.
type cache struct {
	mu     sync.RWMutex
	values map[string]any
	onces  map[string]*sync.Once
}

var (
	registry = newCache()

	defaultEnvMu     sync.Mutex
	defaultEnvLoaded bool
)

func newCache() *cache {
	return &cache{
		values: make(map[string]any),
		onces:  make(map[string]*sync.Once),
	}
}

// LoadEnv loads environment variables from the given .env files.
// Variables already set in the process environment always win; among the
// files, later ones override earlier ones. With no arguments the default .env
// in the working directory is loaded. Call LoadEnv before the first Load.
func LoadEnv(paths ...string) error {
	defaultEnvMu.Lock()
	defaultEnvLoaded = true
	defaultEnvMu.Unlock()

	if len(paths) == 0 {
		return godotenv.Load()
	}

	merged := make(map[string]string)
	for _, p := range paths {
		vars, err := godotenv.Read(p)
		if err != nil {
			return fmt.Errorf("load env file %q: %w", p, err)
		}
		maps.Copy(merged, vars)
	}
	for k, v := range merged {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

// MustLoadEnv is like LoadEnv but panics on failure.
func MustLoadEnv(paths ...string) {
	if err := LoadEnv(paths...); err != nil {
		panic(fmt.Sprintf("Failed to load env files: %v", err))
	}
}

// Load parses environment variables into v. Each configuration type is parsed
// only once; later calls for the same type are served from the cache.
//
// The default .env file is loaded (if present) before the first parse unless
// LoadEnv was called explicitly.
//
// Example:
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	loadDefaultEnv()
	if v == nil {
		return ErrNilPointer
	}

	key := typeKey[T]()

	if cached, ok := registry.get(key); ok {
		*v = cached.(T)
		return nil
	}

	registry.mu.Lock()
	once, exists := registry.onces[key]
	if !exists {
		once = new(sync.Once)
		registry.onces[key] = once
	}
	registry.mu.Unlock()

	var err error
	once.Do(func() {
		if parseErr := env.Parse(v); parseErr != nil {
			err = errors.Join(ErrParsingConfig, parseErr)
			// Allow a retry once the environment is fixed.
			registry.mu.Lock()
			delete(registry.onces, key)
			registry.mu.Unlock()
			return
		}
		registry.mu.Lock()
		registry.values[key] = *v
		registry.mu.Unlock()
	})
	if err != nil {
		return err
	}

	if cached, ok := registry.get(key); ok {
		*v = cached.(T)
		return nil
	}
	return ErrConfigNotLoaded
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}

// ForceReloadConfig drops the cached value for T and parses the environment again.
func ForceReloadConfig[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	key := typeKey[T]()
	registry.mu.Lock()
	delete(registry.values, key)
	delete(registry.onces, key)
	registry.mu.Unlock()
	return Load(v)
}

// ResetCache forgets every cached configuration. Intended for tests.
func ResetCache() {
	registry.mu.Lock()
	registry.values = make(map[string]any)
	registry.onces = make(map[string]*sync.Once)
	registry.mu.Unlock()
}

func (c *cache) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

func loadDefaultEnv() {
	defaultEnvMu.Lock()
	defer defaultEnvMu.Unlock()
	if defaultEnvLoaded {
		return
	}
	defaultEnvLoaded = true
	// A missing .env is fine; the process environment is the source of truth.
	_ = godotenv.Load()
}

func typeKey[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
