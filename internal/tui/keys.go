package tui

import "github.com/charmbracelet/bubbles/key"

// Note keys live on the zxcvbnm, asdfghj and qwertyu rows, so commands use
// what is left over.
type keyMap struct {
	Play       key.Binding
	Stop       key.Binding
	PlayAll    key.Binding
	Loop       key.Binding
	Record     key.Binding
	AddPart    key.Binding
	RemovePart key.Binding
	NextPart   key.Binding
	PrevPart   key.Binding
	NextChord  key.Binding
	PrevChord  key.Binding
	Deselect   key.Binding
	Up         key.Binding
	Down       key.Binding
	Lengthen   key.Binding
	Shorten    key.Binding
	Delete     key.Binding
	Undo       key.Binding
	OctaveUp   key.Binding
	OctaveDown key.Binding
	Instrument key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func binding(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

func defaultKeyMap() keyMap {
	return keyMap{
		Play:       binding("play/pause", " "),
		Stop:       binding("stop", "."),
		PlayAll:    binding("play/stop all", "p"),
		Loop:       binding("loop", "l"),
		Record:     binding("record", "i"),
		AddPart:    binding("add part", "+", "="),
		RemovePart: binding("remove part", "-"),
		NextPart:   binding("next part", "tab"),
		PrevPart:   binding("prev part", "shift+tab"),
		NextChord:  binding("select next", "]"),
		PrevChord:  binding("select prev", "["),
		Deselect:   binding("deselect", "esc"),
		Up:         binding("transpose up", "up"),
		Down:       binding("transpose down", "down"),
		Lengthen:   binding("lengthen", "right"),
		Shorten:    binding("shorten", "left"),
		Delete:     binding("delete", "backspace", "delete"),
		Undo:       binding("undo", "ctrl+z"),
		OctaveUp:   binding("octave up", ">"),
		OctaveDown: binding("octave down", "<"),
		Instrument: binding("instrument", "k"),
		Help:       binding("help", "?"),
		Quit:       binding("quit", "ctrl+c"),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Record, k.Play, k.Stop, k.Loop, k.Undo, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Stop, k.PlayAll, k.Loop, k.Record},
		{k.AddPart, k.RemovePart, k.NextPart, k.PrevPart, k.Instrument},
		{k.NextChord, k.PrevChord, k.Deselect, k.Delete, k.Undo},
		{k.Up, k.Down, k.Lengthen, k.Shorten, k.OctaveUp, k.OctaveDown},
		{k.Help, k.Quit},
	}
}
