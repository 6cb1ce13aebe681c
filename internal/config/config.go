// Package config reads the process-level configuration of the desktop app
// from the environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	// DataDir replaces the platform local-data directory as the parent of
	// screenpipe/store.bin.
	DataDir    string     `env:"SCREENPIPE_DATA_DIR"`
	LogLevel   slog.Level `env:"SCREENPIPE_LOG_LEVEL" envDefault:"info"`
	LogNoColor bool       `env:"SCREENPIPE_LOG_NO_COLOR"`
	DBLogLevel string     `env:"SCREENPIPE_DB_LOG_LEVEL" envDefault:"warn"`
}

// Load applies the given .env files (missing ones are skipped) and parses
// the environment. Variables already set win over .env entries.
func Load(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.DBLogLevel {
	case "silent", "error", "warn", "info":
	default:
		return Config{}, fmt.Errorf("invalid SCREENPIPE_DB_LOG_LEVEL %q", cfg.DBLogLevel)
	}
	return cfg, nil
}
