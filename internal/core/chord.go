package core

// Chord is a set of notes sounding together for Duration seconds.
// A chord with no notes is a rest.
type Chord struct {
	Notes    []Pitch `json:"notes"`
	Duration float64 `json:"duration"`
	Selected bool    `json:"selected,omitempty"`
}

// NewChord builds a chord, collapsing repeated pitches. The first occurrence
// wins and press order is kept.
func NewChord(notes []Pitch, duration float64) Chord {
	return Chord{Notes: dedupe(notes), Duration: duration}
}

// NewRest builds a chord with no notes.
func NewRest(duration float64) Chord {
	return Chord{Duration: duration}
}

// IsRest reports whether the chord has no notes.
func (c Chord) IsRest() bool {
	return len(c.Notes) == 0
}

// Transpose moves every note a semitone up or down.
func (c Chord) Transpose(up bool) Chord {
	notes := make([]Pitch, len(c.Notes))
	for i, p := range c.Notes {
		if up {
			notes[i] = TransposeUp(p)
		} else {
			notes[i] = TransposeDown(p)
		}
	}
	c.Notes = dedupe(notes)
	return c
}

func dedupe(notes []Pitch) []Pitch {
	if len(notes) == 0 {
		return nil
	}
	seen := make(map[Pitch]bool, len(notes))
	out := make([]Pitch, 0, len(notes))
	for _, p := range notes {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
