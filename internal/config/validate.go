package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Session.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("session: %w", err))
	}
	if err := c.Tempo.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tempo: %w", err))
	}
	if err := c.Keyboard.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("keyboard: %w", err))
	}
	if err := c.MIDI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("midi: %w", err))
	}
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks SessionConfig for errors.
func (c *SessionConfig) Validate() error {
	if c.MaxUndo < 0 {
		return errors.New("max_undo must be non-negative")
	}
	if c.Debounce < 0 {
		return errors.New("debounce must be non-negative")
	}
	return nil
}

// Validate checks TempoConfig for errors.
func (c *TempoConfig) Validate() error {
	if c.BPM < 0 || c.BPM > 999 {
		return fmt.Errorf("bpm must be between 1 and 999, got %g", c.BPM)
	}
	return nil
}

// Validate checks KeyboardConfig for errors.
func (c *KeyboardConfig) Validate() error {
	if c.Octave < 0 || c.Octave > 7 {
		return fmt.Errorf("octave must be between 0 and 7, got %d", c.Octave)
	}
	return nil
}

// Validate checks MIDIConfig for errors.
func (c *MIDIConfig) Validate() error {
	if c.Channel < 0 || c.Channel > 16 {
		return errors.New("channel must be between 1 and 16")
	}
	if c.Velocity < 0 || c.Velocity > 127 {
		return errors.New("velocity must be between 1 and 127")
	}
	return nil
}

// Validate checks ServerConfig for errors.
func (c *ServerConfig) Validate() error {
	if c.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Addr); err != nil {
			return fmt.Errorf("invalid addr: %w", err)
		}
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	if c.RefreshInterval < 0 {
		return errors.New("refresh_interval must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
