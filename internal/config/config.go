// Package config loads and validates the scrobvault TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"scrobvault/internal/trace"
)

// DefaultPath is the configuration file location used when --config is not
// given, relative to the current directory.
const DefaultPath = "data/configuration.toml"

// Config is the fully validated scrobvault configuration.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	LastFM  LastFMConfig  `toml:"lastfm"`
	Archive ArchiveConfig `toml:"archive"`
}

// LoggingConfig controls the console and log file sinks.
type LoggingConfig struct {
	// ConsoleLevel filters console output: off|error|info|debug.
	ConsoleLevel string `toml:"console_level"`
	// FileLevel filters log file output: off|error|info|debug.
	FileLevel string `toml:"file_level"`
	// FileDir is the directory log files are written to. Required when
	// FileLevel is not "off".
	FileDir string `toml:"file_dir"`
}

// LastFMConfig holds last.fm API access settings.
type LastFMConfig struct {
	APIKey string `toml:"api_key"`
	// BaseURL optionally overrides the API root, mainly for tests.
	BaseURL string `toml:"base_url"`
}

// ArchiveConfig holds local archive storage settings.
type ArchiveConfig struct {
	// RootDir is the directory per-user archive directories live under.
	RootDir string `toml:"root_dir"`
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	if !meta.IsDefined("lastfm") {
		return nil, fmt.Errorf("%s: missing [lastfm] section", path)
	}
	if !meta.IsDefined("archive") {
		return nil, fmt.Errorf("%s: missing [archive] section", path)
	}

	// The [logging] section is optional: console at info, no log file.
	if cfg.Logging.ConsoleLevel == "" {
		cfg.Logging.ConsoleLevel = "info"
	}
	if cfg.Logging.FileLevel == "" {
		cfg.Logging.FileLevel = "off"
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault loads the configuration from DefaultPath.
func LoadDefault() (*Config, error) {
	path, err := filepath.Abs(DefaultPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve default configuration path: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no configuration found at %s (use --config to point elsewhere)", path)
	}
	return Load(path)
}

func (c *Config) validate() error {
	// Level strings are checked once here so later lookups cannot fail.
	if _, err := trace.ParseLevel(c.Logging.ConsoleLevel); err != nil {
		return fmt.Errorf("logging.console_level: %w", err)
	}
	fileLevel, err := trace.ParseLevel(c.Logging.FileLevel)
	if err != nil {
		return fmt.Errorf("logging.file_level: %w", err)
	}
	if fileLevel > trace.LevelOff && c.Logging.FileDir == "" {
		return fmt.Errorf("logging.file_dir is required when logging.file_level is not \"off\"")
	}

	if c.LastFM.APIKey == "" {
		return fmt.Errorf("lastfm.api_key must not be empty")
	}
	if c.Archive.RootDir == "" {
		return fmt.Errorf("archive.root_dir must not be empty")
	}
	return nil
}

// ConsoleLogLevel returns the parsed console level filter. Validated at
// load time, so parsing cannot fail here.
func (c *LoggingConfig) ConsoleLogLevel() trace.Level {
	level, _ := trace.ParseLevel(c.ConsoleLevel)
	return level
}

// FileLogLevel returns the parsed log file level filter. Validated at load
// time, so parsing cannot fail here.
func (c *LoggingConfig) FileLogLevel() trace.Level {
	level, _ := trace.ParseLevel(c.FileLevel)
	return level
}
