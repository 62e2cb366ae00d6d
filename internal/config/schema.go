package config

// Config is the root configuration structure.
type Config struct {
	Session  SessionConfig  `toml:"session" json:"session"`
	Tempo    TempoConfig    `toml:"tempo" json:"tempo"`
	Keyboard KeyboardConfig `toml:"keyboard" json:"keyboard"`
	MIDI     MIDIConfig     `toml:"midi" json:"midi"`
	Server   ServerConfig   `toml:"server" json:"server"`
	TUI      TUIConfig      `toml:"tui" json:"tui"`
	Log      LogConfig      `toml:"log" json:"log"`
}

// SessionConfig holds persistence and editing settings.
type SessionConfig struct {
	File     string `toml:"file" json:"file"`
	Quantize *bool  `toml:"quantize" json:"quantize"`
	MaxUndo  int    `toml:"max_undo" json:"max_undo"`
	// Debounce is the save coalescing window in milliseconds.
	Debounce int `toml:"debounce" json:"debounce"`
}

// QuantizeEnabled reports whether recorded durations snap to the ladder.
func (c SessionConfig) QuantizeEnabled() bool {
	return c.Quantize == nil || *c.Quantize
}

// TempoConfig holds timing settings.
type TempoConfig struct {
	BPM float64 `toml:"bpm" json:"bpm"`
}

// KeyboardConfig holds computer keyboard settings.
type KeyboardConfig struct {
	Octave int `toml:"octave" json:"octave"`
}

// MIDIConfig holds MIDI port settings.
type MIDIConfig struct {
	Input    string `toml:"input" json:"input"`
	Output   string `toml:"output" json:"output"`
	Channel  int    `toml:"channel" json:"channel"`
	Velocity int    `toml:"velocity" json:"velocity"`
}

// ServerConfig holds HTTP control surface settings.
type ServerConfig struct {
	Addr    string   `toml:"addr" json:"addr"`
	Origins []string `toml:"origins" json:"origins"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme" json:"theme"`
	RefreshInterval int    `toml:"refresh_interval" json:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}
