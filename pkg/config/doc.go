// Package config loads typed application configuration from environment
// variables.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`:
//
//   - LoadEnv / MustLoadEnv read one or more `.env` files into the process
//     environment. Variables already set in the process are never replaced;
//     between files, later ones win.
//   - Load / MustLoad parse the environment into any struct annotated with
//     `env` and `envDefault` tags.
//   - Every configuration type is parsed once and cached for the lifetime of
//     the process. ResetCache and ForceReloadConfig exist for tests.
//
// # Usage
//
//	type DatabaseConfig struct {
//	    Host string `env:"DB_HOST" envDefault:"localhost"`
//	    Port int    `env:"DB_PORT" envDefault:"5432"`
//	}
//
//	var db DatabaseConfig
//	if err := config.Load(&db); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// If LoadEnv was not called, the default `.env` in the working directory is
// loaded (when present) right before the first Load.
//
// # Error Handling
//
// Sentinel errors can be compared with errors.Is:
//
//   - ErrParsingConfig – failed to parse env vars into struct.
//   - ErrConfigNotLoaded – concurrent load observed a failed parse.
//   - ErrNilPointer – nil pointer passed to Load/MustLoad.
package config
