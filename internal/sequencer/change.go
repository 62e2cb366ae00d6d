package sequencer

// ChangeKind says what part of the session changed.
type ChangeKind int

const (
	KeysChanged ChangeKind = iota
	ChordsChanged
	SelectionChanged
	PartsChanged
	PlaybackChanged
	RecordingChanged
	InstrumentChanged
	OctaveChanged
	Undone
)

var changeNames = map[ChangeKind]string{
	KeysChanged:       "keys",
	ChordsChanged:     "chords",
	SelectionChanged:  "selection",
	PartsChanged:      "parts",
	PlaybackChanged:   "playback",
	RecordingChanged:  "recording",
	InstrumentChanged: "instrument",
	OctaveChanged:     "octave",
	Undone:            "undo",
}

func (k ChangeKind) String() string {
	if s, ok := changeNames[k]; ok {
		return s
	}
	return "unknown"
}

// AllParts marks a change that is not tied to one part.
const AllParts = -1

// Change is published after every engine operation that altered state.
type Change struct {
	Kind ChangeKind
	Part int
}
