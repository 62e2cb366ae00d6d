package core

import (
	"github.com/google/uuid"
)

// PlayState is the playback state of a part.
type PlayState int

const (
	Stopped PlayState = iota
	Playing
	Paused
)

func (s PlayState) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s PlayState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DefaultInstrument is the instrument id new parts start with.
const DefaultInstrument = "default"

// Part is an independently recordable and playable track.
type Part struct {
	ID           string    `json:"id"`
	Chords       []Chord   `json:"chords"`
	Recording    bool      `json:"recording"`
	Looping      bool      `json:"looping"`
	InstrumentID string    `json:"instrument"`
	Playing      Index     `json:"playing"`
	State        PlayState `json:"state"`
}

// NewPart returns an empty, stopped part with a fresh id.
func NewPart() *Part {
	return &Part{
		ID:           uuid.NewString(),
		InstrumentID: DefaultInstrument,
	}
}

// SelectedIndex returns the selected chord, if any.
func (p *Part) SelectedIndex() Index {
	for i, c := range p.Chords {
		if c.Selected {
			return SomeIndex(i)
		}
	}
	return NoIndex
}

// TotalDuration is the sum of all chord durations, rests included.
func (p *Part) TotalDuration() float64 {
	return p.OffsetOf(len(p.Chords))
}

// OffsetOf is the cumulative duration of the chords strictly before i.
func (p *Part) OffsetOf(i int) float64 {
	var t float64
	for j := 0; j < i && j < len(p.Chords); j++ {
		t += p.Chords[j].Duration
	}
	return t
}

// ClearSelection deselects every chord.
func (p *Part) ClearSelection() {
	for i := range p.Chords {
		p.Chords[i].Selected = false
	}
}

// Len returns the number of chords.
func (p *Part) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Chords)
}
