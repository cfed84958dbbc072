// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Output formats accepted by the CLI and the API.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

type Config struct {
	Server struct {
		Port        int           `envconfig:"PORT" default:"8080"`
		BodyLimitMB int           `envconfig:"BODY_LIMIT_MB" default:"32"`
		ReadTimeout time.Duration `envconfig:"READ_TIMEOUT" default:"60s"`
	}

	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	DefaultFormat string `envconfig:"DEFAULT_FORMAT" default:"xlsx"`
}

// Load reads a .env file from the working directory when present, then
// the process environment. A missing .env is fine; an unreadable or
// malformed one is an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Server.Port)
	}
	if c.Server.BodyLimitMB <= 0 {
		return fmt.Errorf("invalid BODY_LIMIT_MB %d", c.Server.BodyLimitMB)
	}
	if _, err := ParseFormat(c.DefaultFormat); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	c.DefaultFormat = strings.ToLower(c.DefaultFormat)
	return nil
}

// BodyLimit is the upload size limit in bytes.
func (c *Config) BodyLimit() int { return c.Server.BodyLimitMB << 20 }

// Addr is the listen address.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }

// Level returns the configured log level, info when unset.
func (c *Config) Level() slog.Level {
	lvl, _ := ParseLevel(c.LogLevel)
	return lvl
}

// ParseFormat normalizes an output format name.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q: use csv, xlsx or json", s)
	}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return lvl, nil
}
