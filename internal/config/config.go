// Package config loads tampergen settings from an optional YAML file and
// TAMPERGEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides. Nested keys use a
// double underscore, e.g. TAMPERGEN_HISTORY__PATH.
const EnvPrefix = "TAMPERGEN_"

type HistoryConfig struct {
	Path string `koanf:"path"` // SQLite file; empty disables history
}

type MetricsConfig struct {
	Textfile string `koanf:"textfile"` // node-exporter textfile; empty disables export
}

type Config struct {
	Seed     int64    `koanf:"seed"`     // 0 seeds from the clock
	Format   string   `koanf:"format"`   // text|json|yaml
	Output   string   `koanf:"output"`   // empty writes to stdout
	Verbose  int      `koanf:"verbose"`  // 0-3
	Parallel bool     `koanf:"parallel"` // apply tampers concurrently
	Workers  int      `koanf:"workers"`  // worker count; only used when parallel
	Only     []string `koanf:"only"`     // restrict the catalog; empty means all

	History HistoryConfig `koanf:"history"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

// Load merges YAML at path (if present) with environment overrides and
// applies defaults. A missing file is not an error. The result is not
// validated: callers layer their own overrides on top and then call Validate.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	ApplyDefaults(&cfg)
	return cfg, nil
}

// ---------------------------------------------------------------------------
// defaults / validation
// ---------------------------------------------------------------------------

// ApplyDefaults fills unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	cfg.Format = strings.ToLower(cfg.Format)
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
}

// Validate rejects settings no command can honour.
func (c Config) Validate() error {
	switch c.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("config: unsupported format %q (want text, json or yaml)", c.Format)
	}
	if c.Verbose < 0 || c.Verbose > 3 {
		return fmt.Errorf("config: verbose must be between 0 and 3, got %d", c.Verbose)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	return nil
}
