package sequencer

import (
	"time"

	"go.uber.org/zap"

	"github.com/tessro/stave/internal/core"
)

// KeyDown starts holding p. Repeated presses of a held pitch are ignored.
func (e *Engine) KeyDown(p core.Pitch) {
	s := e.session
	now := e.clock()
	if !s.KeyPressed.Press(p, now) {
		return
	}
	if e.holding == nil || s.KeyPressed.Len() == 1 {
		e.holding = e.instrumentFor(s.CurrentPart())
	}
	e.holding.Attack([]core.Pitch{p})

	e.rest = 0
	if !s.LastRelease.IsZero() {
		e.rest = now.Sub(s.LastRelease).Seconds()
	}
	e.emit(KeysChanged, s.Current)
}

// KeyUp releases every held pitch on the instrument they were attacked on
// and, when the current part is recording, appends them as one chord.
// Releasing a pitch that is not held is ignored.
func (e *Engine) KeyUp(p core.Pitch) {
	s := e.session
	now := e.clock()
	pressed, ok := s.KeyPressed.PressedAt(p)
	if !ok {
		return
	}
	held := s.KeyPressed.Pitches()
	part := s.CurrentPart()
	inst := e.holding
	if inst == nil {
		inst = e.instrumentFor(part)
	}
	inst.Release(held)

	if part.Recording {
		defer e.change(ChordsChanged, s.Current)()
		e.appendRest(part)
		chord := core.NewChord(held, e.duration(now.Sub(pressed)))
		part.Chords = append(part.Chords, chord)
		e.logger.Debug("chord recorded",
			zap.Strings("notes", core.PitchNames(chord.Notes)),
			zap.String("value", e.ladder.ToNotation(chord.Duration).String()),
		)
	} else {
		defer e.emit(KeysChanged, s.Current)
	}

	s.KeyPressed.Clear()
	e.holding = nil
	s.LastRelease = now
}

func (e *Engine) appendRest(part *core.Part) {
	if e.rest < e.minRest() || len(part.Chords) == 0 {
		return
	}
	if part.Chords[len(part.Chords)-1].IsRest() {
		return
	}
	part.Chords = append(part.Chords, core.NewRest(e.quantized(e.rest)))
}

// minRest is half the shortest note value; shorter gaps are not rests.
func (e *Engine) minRest() float64 {
	return e.ladder.ToSeconds(e.ladder.Min()) / 2
}

func (e *Engine) duration(d time.Duration) float64 {
	return e.quantized(d.Seconds())
}

func (e *Engine) quantized(seconds float64) float64 {
	if !e.quantize {
		if seconds <= 0 {
			return e.ladder.ToSeconds(e.ladder.Min())
		}
		return seconds
	}
	return e.ladder.Quantize(seconds)
}

// DeleteSelected removes the selected chord of every part. In the current
// part, when recording with nothing selected, it removes the last chord.
func (e *Engine) DeleteSelected() {
	s := e.session
	defer e.change(ChordsChanged, AllParts)()
	for i, part := range s.Parts {
		if sel, ok := part.SelectedIndex().Get(); ok {
			e.removeChord(part, sel)
		} else if i == s.Current && part.Recording && len(part.Chords) > 0 {
			e.removeChord(part, len(part.Chords)-1)
		}
	}
	s.LastRelease = time.Time{}
}
