package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	quantize := true
	return &Config{
		Session: SessionConfig{
			Quantize: &quantize,
			MaxUndo:  256,
			Debounce: 250,
		},
		Tempo: TempoConfig{
			BPM: 120,
		},
		Keyboard: KeyboardConfig{
			Octave: 4,
		},
		MIDI: MIDIConfig{
			Channel:  1,
			Velocity: 100,
		},
		Server: ServerConfig{
			Addr:    "127.0.0.1:7878",
			Origins: []string{"*"},
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 100,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Session
	if c.Session.Quantize == nil {
		c.Session.Quantize = d.Session.Quantize
	}
	if c.Session.MaxUndo == 0 {
		c.Session.MaxUndo = d.Session.MaxUndo
	}
	if c.Session.Debounce == 0 {
		c.Session.Debounce = d.Session.Debounce
	}

	// Tempo
	if c.Tempo.BPM == 0 {
		c.Tempo.BPM = d.Tempo.BPM
	}

	// Keyboard
	if c.Keyboard.Octave == 0 {
		c.Keyboard.Octave = d.Keyboard.Octave
	}

	// MIDI
	if c.MIDI.Channel == 0 {
		c.MIDI.Channel = d.MIDI.Channel
	}
	if c.MIDI.Velocity == 0 {
		c.MIDI.Velocity = d.MIDI.Velocity
	}

	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.Origins == nil {
		c.Server.Origins = d.Server.Origins
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
