package sequencer

import (
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/tessro/stave/internal/core"
	staveerrors "github.com/tessro/stave/internal/errors"
)

// Select toggles the selection of a chord. Other chords of the part are
// deselected.
func (e *Engine) Select(part, chord int) error {
	p, err := e.part(part)
	if err != nil {
		return err
	}
	if chord < 0 || chord >= len(p.Chords) {
		return staveerrors.ErrChordOutOfRange
	}
	was := p.Chords[chord].Selected
	p.ClearSelection()
	p.Chords[chord].Selected = !was
	e.emit(SelectionChanged, part)
	return nil
}

// MoveSelection moves the part's selection by delta chords, selecting the
// first or last chord when nothing is selected.
func (e *Engine) MoveSelection(part, delta int) error {
	p, err := e.part(part)
	if err != nil {
		return err
	}
	if len(p.Chords) == 0 {
		return nil
	}
	next := 0
	if delta < 0 {
		next = len(p.Chords) - 1
	}
	if cur, ok := p.SelectedIndex().Get(); ok {
		next = min(max(cur+delta, 0), len(p.Chords)-1)
	}
	p.ClearSelection()
	p.Chords[next].Selected = true
	e.emit(SelectionChanged, part)
	return nil
}

// ClearSelection deselects everything in every part.
func (e *Engine) ClearSelection() {
	for _, p := range e.session.Parts {
		p.ClearSelection()
	}
	e.emit(SelectionChanged, AllParts)
}

// editSelected applies fn to the selected chord of every part.
func (e *Engine) editSelected(fn func(c *core.Chord)) {
	defer e.change(ChordsChanged, AllParts)()
	for _, p := range e.session.Parts {
		if i, ok := p.SelectedIndex().Get(); ok {
			fn(&p.Chords[i])
		}
	}
}

// TransposeSelected moves the selected chords a semitone.
func (e *Engine) TransposeSelected(up bool) {
	e.editSelected(func(c *core.Chord) {
		selected := c.Selected
		*c = c.Transpose(up)
		c.Selected = selected
	})
}

// LengthenSelected steps the selected chords one rung longer.
func (e *Engine) LengthenSelected() {
	e.editSelected(func(c *core.Chord) {
		c.Duration = e.ladder.Lengthen(c.Duration)
	})
}

// ShortenSelected steps the selected chords one rung shorter.
func (e *Engine) ShortenSelected() {
	e.editSelected(func(c *core.Chord) {
		c.Duration = e.ladder.Shorten(c.Duration)
	})
}

// DeleteChord removes one chord.
func (e *Engine) DeleteChord(part, chord int) error {
	p, err := e.part(part)
	if err != nil {
		return err
	}
	if chord < 0 || chord >= len(p.Chords) {
		return staveerrors.ErrChordOutOfRange
	}
	defer e.change(ChordsChanged, part)()
	e.removeChord(p, chord)
	return nil
}

// removeChord deletes chord i. Playback of that chord stops; a cursor past
// it moves down with the chord it pointed at and a playing part is
// rescheduled around the gap.
func (e *Engine) removeChord(p *core.Part, i int) {
	p.Chords = slices.Delete(p.Chords, i, i+1)
	cur, ok := p.Playing.Get()
	switch {
	case ok && cur == i:
		e.stop(p)
		return
	case ok && cur > i:
		p.Playing = core.SomeIndex(cur - 1)
	}
	e.reschedule(p)
}

// AddPart appends an empty part and returns its index.
func (e *Engine) AddPart() int {
	p := core.NewPart()
	e.session.Parts = append(e.session.Parts, p)
	i := len(e.session.Parts) - 1
	defer e.change(PartsChanged, i)()
	e.logger.Debug("part added", zap.String("id", p.ID))
	return i
}

// RemovePart deletes part i. The last remaining part cannot be removed.
func (e *Engine) RemovePart(i int) error {
	s := e.session
	p, err := e.part(i)
	if err != nil {
		return err
	}
	if len(s.Parts) == 1 {
		return nil
	}
	defer e.change(PartsChanged, i)()
	e.cancel(p)
	delete(e.cursors, p.ID)
	e.retired[p.ID] = p
	s.Parts = slices.Delete(s.Parts, i, i+1)
	if s.Current > i || s.Current >= len(s.Parts) {
		s.Current--
	}
	return nil
}

// SelectPart makes part i current. The previous current part stops recording.
func (e *Engine) SelectPart(i int) error {
	s := e.session
	if _, err := e.part(i); err != nil {
		return err
	}
	if i == s.Current {
		return nil
	}
	s.CurrentPart().Recording = false
	s.Current = i
	e.emit(RecordingChanged, i)
	return nil
}

// ToggleRecord flips recording on part i. Turning it on makes the part current.
func (e *Engine) ToggleRecord(i int) error {
	s := e.session
	p, err := e.part(i)
	if err != nil {
		return err
	}
	if p.Recording {
		p.Recording = false
	} else {
		if i != s.Current {
			s.CurrentPart().Recording = false
			s.Current = i
		}
		p.Recording = true
	}
	e.logger.Debug("recording toggled", zap.Int("part", i), zap.Bool("recording", p.Recording))
	e.emit(RecordingChanged, i)
	return nil
}

// SetInstrument binds part i to an instrument id.
func (e *Engine) SetInstrument(i int, id string) error {
	p, err := e.part(i)
	if err != nil {
		return err
	}
	p.InstrumentID = id
	e.emit(InstrumentChanged, i)
	return nil
}

// SetOctave sets the keyboard's base octave. Rows span base to base+2.
func (e *Engine) SetOctave(base int) {
	e.octave = min(max(base, 0), 7)
	e.emit(OctaveChanged, AllParts)
}

// Replace swaps every part for ones built from data. Playback stops.
func (e *Engine) Replace(data []core.PartData) error {
	parts, err := core.FromData(data)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		parts = []*core.Part{core.NewPart()}
	}
	defer e.change(PartsChanged, AllParts)()
	for _, p := range e.session.Parts {
		e.cancel(p)
	}
	e.cursors = make(map[string]*cursor)
	e.retired = make(map[string]*core.Part)
	e.session.Parts = parts
	e.session.Current = 0
	return nil
}

// Clear resets the session to a single empty part.
func (e *Engine) Clear() {
	_ = e.Replace(nil)
}
