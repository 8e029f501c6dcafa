// Package config reads analyzer settings from the environment.  Values come
// from LUATY_* variables, optionally seeded from .env files; command line
// flags override them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/panyam/luaty/logging"
	"github.com/panyam/luaty/types"
)

const envPrefix = "LUATY_"

type Config struct {
	LogLevel       logging.LogLevel
	MaxImportDepth int
	StrictUnknown  bool
	StrictNil      bool
	NoColor        bool
	Workers        int
}

// Defaults returns the settings used when nothing is configured.
func Defaults() *Config {
	return &Config{
		LogLevel:       logging.LogLevelWarn,
		MaxImportDepth: 10,
		Workers:        runtime.GOMAXPROCS(0),
	}
}

// Load applies the given .env files, skipping missing ones, and then reads
// LUATY_* variables over the defaults.  Variables already set in the
// environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a variable lookup.
func FromEnv(getenv func(string) string) (*Config, error) {
	c := Defaults()
	var err error
	if v := getenv(envPrefix + "LOG_LEVEL"); v != "" {
		if c.LogLevel, err = logging.ParseLogLevel(v); err != nil {
			return nil, err
		}
	}
	if c.MaxImportDepth, err = intVar(getenv, "MAX_IMPORT_DEPTH", c.MaxImportDepth); err != nil {
		return nil, err
	}
	if c.Workers, err = intVar(getenv, "WORKERS", c.Workers); err != nil {
		return nil, err
	}
	if c.StrictUnknown, err = boolVar(getenv, "STRICT_UNKNOWN", false); err != nil {
		return nil, err
	}
	if c.StrictNil, err = boolVar(getenv, "STRICT_NIL", false); err != nil {
		return nil, err
	}
	if c.NoColor, err = boolVar(getenv, "NO_COLOR", false); err != nil {
		return nil, err
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return c, nil
}

// Mode is the variance mode the strictness settings select.
func (c *Config) Mode() types.Mode {
	var m types.Mode
	if c.StrictUnknown {
		m |= types.StrictUnknown
	}
	if c.StrictNil {
		m |= types.StrictNil
	}
	return m
}

func intVar(getenv func(string) string, name string, def int) (int, error) {
	v := strings.TrimSpace(getenv(envPrefix + name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def, fmt.Errorf("%s%s: expected a non-negative integer, got %q", envPrefix, name, v)
	}
	return n, nil
}

func boolVar(getenv func(string) string, name string, def bool) (bool, error) {
	v := strings.TrimSpace(getenv(envPrefix + name))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s%s: expected a boolean, got %q", envPrefix, name, v)
	}
	return b, nil
}
