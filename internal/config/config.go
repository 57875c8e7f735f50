// Package config loads optional persistent defaults for randcp.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the optional randcp configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
}

// DefaultsConfig holds persistent flag defaults. A nil field means the
// file did not set it.
type DefaultsConfig struct {
	Count          *int      `toml:"count"`
	StallTimeout   *Duration `toml:"stall_timeout"`
	Verify         *bool     `toml:"verify"`
	BWLimit        *string   `toml:"bwlimit"`
	FollowSymlinks *bool     `toml:"follow_symlinks"`
	History        *bool     `toml:"history"`
	Seed           *uint64   `toml:"seed"`
	Exclude        []string  `toml:"exclude"`
}

// Duration is a time.Duration written as a Go duration string ("45s").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	if v <= 0 {
		return fmt.Errorf("duration %q must be positive", text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "randcp", "config.toml")
}

// Load reads the config file from the XDG path. A missing file yields a
// zero Config and no error.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. Keys randcp does not know are an error
// so that typos do not pass silently.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if c := cfg.Defaults.Count; c != nil && *c < 1 {
		return Config{}, fmt.Errorf("config %s: count must be at least 1", path)
	}
	return cfg, nil
}
