package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	staveerrors "github.com/tessro/stave/internal/errors"
)

// RCFileName is the name of the per-user config file in the home directory.
const RCFileName = ".staverc"

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.staverc, $XDG_CONFIG_HOME/stave/config.toml, ~/.config/stave/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", staveerrors.ErrInvalidConfig, path, err)
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", staveerrors.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", staveerrors.ErrInvalidConfig, path, err)
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultPath returns the path `config init` writes to.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return RCFileName
	}
	return filepath.Join(home, RCFileName)
}

// Write encodes cfg as TOML to path, creating parent directories.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	_, _ = fmt.Fprintln(f, "# Stave Configuration")
	_, _ = fmt.Fprintln(f, "")

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, RCFileName),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "stave", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Session
	if v := os.Getenv("STAVE_SESSION_FILE"); v != "" {
		cfg.Session.File = v
	}
	if v := os.Getenv("STAVE_SESSION_QUANTIZE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Session.Quantize = &b
		}
	}

	// Tempo
	if v := os.Getenv("STAVE_TEMPO_BPM"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Tempo.BPM = f
		}
	}

	// MIDI
	if v := os.Getenv("STAVE_MIDI_INPUT"); v != "" {
		cfg.MIDI.Input = v
	}
	if v := os.Getenv("STAVE_MIDI_OUTPUT"); v != "" {
		cfg.MIDI.Output = v
	}

	// Server
	if v := os.Getenv("STAVE_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("STAVE_SERVER_ORIGINS"); v != "" {
		cfg.Server.Origins = strings.Split(v, ",")
	}

	// TUI
	if v := os.Getenv("STAVE_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}

	// Log
	if v := os.Getenv("STAVE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("STAVE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
