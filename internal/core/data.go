package core

import (
	"encoding/json"
	"fmt"

	staveerrors "github.com/tessro/stave/internal/errors"
)

// ChordData is the persisted form of a chord.
type ChordData struct {
	Notes    []string `json:"notes" yaml:"notes"`
	Duration float64  `json:"duration" yaml:"duration"`
}

// PartData is the persisted form of a part: its chords and nothing else.
type PartData struct {
	Chords []ChordData `json:"chords" yaml:"chords"`
}

// ToData strips parts down to their persisted form.
func ToData(parts []*Part) []PartData {
	out := make([]PartData, len(parts))
	for i, p := range parts {
		chords := make([]ChordData, len(p.Chords))
		for j, c := range p.Chords {
			chords[j] = ChordData{Notes: PitchNames(c.Notes), Duration: c.Duration}
		}
		out[i] = PartData{Chords: chords}
	}
	return out
}

// FromData builds fresh parts from persisted data.
func FromData(data []PartData) ([]*Part, error) {
	parts := make([]*Part, 0, len(data))
	for i, pd := range data {
		p := NewPart()
		for j, cd := range pd.Chords {
			notes, err := ParsePitches(cd.Notes)
			if err != nil {
				return nil, fmt.Errorf("part %d chord %d: %w", i, j, err)
			}
			if cd.Duration <= 0 {
				return nil, fmt.Errorf("part %d chord %d: %w: non-positive duration", i, j, staveerrors.ErrMalformedSession)
			}
			p.Chords = append(p.Chords, NewChord(notes, cd.Duration))
		}
		parts = append(parts, p)
	}
	return parts, nil
}

// EncodeParts serializes parts to their JSON snapshot.
func EncodeParts(parts []*Part) ([]byte, error) {
	return json.Marshal(ToData(parts))
}

// DecodeParts parses a JSON snapshot.
func DecodeParts(b []byte) ([]PartData, error) {
	var data []PartData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", staveerrors.ErrMalformedSession, err)
	}
	return data, nil
}
