// Package config loads the gestock configuration from an optional TOML file
// with environment-variable overrides for deployment settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Cache    CacheConfig    `toml:"cache"`
	Sequence SequenceConfig `toml:"sequence"`
	LogLevel string         `toml:"log_level"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// AuthConfig holds HTTP basic auth credentials. Empty means unauthenticated.
type AuthConfig struct {
	User string `toml:"user"`
	Pass string `toml:"pass"`
}

// CacheConfig holds read-cache tuning.
type CacheConfig struct {
	TTL duration `toml:"ttl"`
}

// SequenceConfig holds document numbering settings.
type SequenceConfig struct {
	// EpochFormat is the time layout that defines the numbering period.
	// "2006" resets counters every calendar year.
	EpochFormat string `toml:"epoch_format"`
}

// duration wraps time.Duration so TOML values like "5m" parse directly.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{Path: "./data/gestock.db"},
		Cache:    CacheConfig{TTL: duration{5 * time.Minute}},
		Sequence: SequenceConfig{EpochFormat: "2006"},
		LogLevel: "info",
	}
}

// Load reads the config file at path (skipped when empty or missing) and then
// applies environment overrides: PORT, DB_PATH, AUTH_USER, AUTH_PASS,
// CACHE_TTL, LOG_LEVEL.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if p := os.Getenv("PORT"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return cfg, fmt.Errorf("invalid PORT %q: %w", p, err)
		}
		cfg.Server.Port = n
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("AUTH_USER"); v != "" {
		cfg.Auth.User = v
	}
	if v := os.Getenv("AUTH_PASS"); v != "" {
		cfg.Auth.Pass = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid CACHE_TTL %q: %w", v, err)
		}
		cfg.Cache.TTL = duration{ttl}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// CacheTTL returns the configured read-cache TTL.
func (c Config) CacheTTL() time.Duration { return c.Cache.TTL.Duration }

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
