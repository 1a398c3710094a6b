// Package config loads truthgate settings from ~/.truthgate/config.yaml with
// TRUTHGATE_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "TRUTHGATE_"

// Log configures diagnostic logging. Logs never go to stdout.
type Log struct {
	Level  string `koanf:"level"`
	File   string `koanf:"file"`
	Format string `koanf:"format"`
}

// Audit configures the decision audit log. An empty path disables it.
type Audit struct {
	Path string `koanf:"path"`
}

// Catalog points at an optional pattern extension file.
type Catalog struct {
	Path string `koanf:"path"`
}

// Config holds all truthgate settings.
type Config struct {
	Disabled bool    `koanf:"disabled"`
	Log      Log     `koanf:"log"`
	Audit    Audit   `koanf:"audit"`
	Catalog  Catalog `koanf:"catalog"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log: Log{
			Level:  "warn",
			Format: "json",
		},
	}
}

// DefaultPath returns ~/.truthgate/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".truthgate", "config.yaml")
}

// Load reads the YAML file at path (DefaultPath when empty), then applies
// environment overrides. A missing file yields defaults plus environment.
// Invalid YAML returns an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = DefaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Audit.Path = ExpandHome(cfg.Audit.Path)
	cfg.Log.File = ExpandHome(cfg.Log.File)
	cfg.Catalog.Path = ExpandHome(cfg.Catalog.Path)
	return cfg, nil
}

// envKey maps TRUTHGATE_LOG_LEVEL to log.level and TRUTHGATE_DISABLED to
// disabled. Only the first underscore after the prefix separates sections.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(key, "_", 2)
	if len(parts) == 1 {
		return key
	}
	return parts[0] + "." + parts[1]
}

// ExpandHome replaces a leading ~/ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
