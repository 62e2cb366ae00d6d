package sequencer

import (
	"github.com/tessro/stave/internal/core"
)

// ChordView is a read-only copy of a chord.
type ChordView struct {
	Notes    []string `json:"notes"`
	Duration float64  `json:"duration"`
	Value    string   `json:"value"`
	Selected bool     `json:"selected"`
	Playing  bool     `json:"playing"`
}

// PartView is a read-only copy of a part.
type PartView struct {
	Index      int         `json:"index"`
	ID         string      `json:"id"`
	Chords     []ChordView `json:"chords"`
	Recording  bool        `json:"recording"`
	Looping    bool        `json:"looping"`
	Instrument string      `json:"instrument"`
	State      string      `json:"state"`
	Playing    core.Index  `json:"playing"`
	Selected   core.Index  `json:"selected"`
	Duration   float64     `json:"duration"`
	Current    bool        `json:"current"`
}

// SessionView is a copy of the session that is safe to read off the loop.
type SessionView struct {
	Parts   []PartView `json:"parts"`
	Current int        `json:"current"`
	Held    []string   `json:"held"`
	Octave  int        `json:"octave"`
	CanUndo bool       `json:"can_undo"`
}

// CurrentPart returns the view of the current part.
func (v SessionView) CurrentPart() PartView {
	return v.Parts[v.Current]
}

// View copies the session.
func (e *Engine) View() SessionView {
	s := e.session
	v := SessionView{
		Parts:   make([]PartView, len(s.Parts)),
		Current: s.Current,
		Held:    core.PitchNames(s.KeyPressed.Pitches()),
		Octave:  e.octave,
		CanUndo: e.CanUndo(),
	}
	for i, p := range s.Parts {
		v.Parts[i] = e.partView(i, p)
	}
	return v
}

func (e *Engine) partView(i int, p *core.Part) PartView {
	pv := PartView{
		Index:      i,
		ID:         p.ID,
		Chords:     make([]ChordView, len(p.Chords)),
		Recording:  p.Recording,
		Looping:    p.Looping,
		Instrument: p.InstrumentID,
		State:      p.State.String(),
		Playing:    p.Playing,
		Selected:   p.SelectedIndex(),
		Duration:   p.TotalDuration(),
		Current:    i == e.session.Current,
	}
	for j, c := range p.Chords {
		pv.Chords[j] = ChordView{
			Notes:    core.PitchNames(c.Notes),
			Duration: c.Duration,
			Value:    e.ladder.ToNotation(c.Duration).String(),
			Selected: c.Selected,
			Playing:  p.Playing.Is(j),
		}
	}
	return pv
}
