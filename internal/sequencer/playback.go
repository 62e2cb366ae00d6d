package sequencer

import (
	"go.uber.org/zap"

	"github.com/tessro/stave/internal/core"
	staveerrors "github.com/tessro/stave/internal/errors"
)

// Event is one scheduled chord of a flattened part.
type Event struct {
	Offset     float64
	ChordIndex int
	Notes      []core.Pitch
	Duration   float64
}

// Flatten lays chords end to end. Rests produce events with no notes.
func Flatten(chords []core.Chord) []Event {
	events := make([]Event, len(chords))
	var offset float64
	for i, c := range chords {
		events[i] = Event{
			Offset:     offset,
			ChordIndex: i,
			Notes:      c.Notes,
			Duration:   c.Duration,
		}
		offset += c.Duration
	}
	return events
}

// cursor tracks the live schedule of one part. Callbacks carry the
// generation they were scheduled under and are dropped once it moves on.
// at is when the chord under the playhead starts, and fired reports
// whether it has sounded yet.
type cursor struct {
	gen   int
	at    float64
	fired bool
}

func (e *Engine) cursor(id string) *cursor {
	c, ok := e.cursors[id]
	if !ok {
		c = &cursor{}
		e.cursors[id] = c
	}
	return c
}

// cancel drops every pending callback of the part.
func (e *Engine) cancel(p *core.Part) {
	e.cursor(p.ID).gen++
	e.transport.CancelAll(p.ID)
}

// reschedule replaces the pending events of a playing part after its chords
// changed. The chord at the cursor keeps sounding and the rest follow it.
func (e *Engine) reschedule(p *core.Part) {
	if p.State != core.Playing {
		return
	}
	if len(p.Chords) == 0 {
		e.stop(p)
		return
	}
	c := e.cursor(p.ID)
	cur, _ := p.Playing.Get()
	base, from := c.at-p.OffsetOf(cur), cur
	if c.fired {
		from++
	}
	e.cancel(p)
	e.schedule(p, base, from)
}

func (e *Engine) part(i int) (*core.Part, error) {
	p := e.session.Part(i)
	if p == nil {
		return nil, staveerrors.ErrPartOutOfRange
	}
	return p, nil
}

// Play starts part i from the top, or resumes it at the chord it was paused
// on. Playing parts and empty parts are left alone.
func (e *Engine) Play(i int) error {
	p, err := e.part(i)
	if err != nil {
		return err
	}
	if p.State == core.Playing || len(p.Chords) == 0 {
		return nil
	}

	from := 0
	if p.State == core.Paused {
		if idx, ok := p.Playing.Get(); ok && idx < len(p.Chords) {
			from = idx
		}
	}

	e.transport.Start()
	base := e.transport.Now() - p.OffsetOf(from)
	p.State = core.Playing
	c := e.cursor(p.ID)
	c.at, c.fired = base+p.OffsetOf(from), false
	e.schedule(p, base, from)
	e.logger.Debug("part playing", zap.Int("part", i), zap.Int("from", from))
	e.emit(PlaybackChanged, i)
	return nil
}

// schedule queues the part's chords from index from, with chord 0 at base.
func (e *Engine) schedule(p *core.Part, base float64, from int) {
	gen := e.cursor(p.ID).gen
	events := Flatten(p.Chords)
	end := base + p.TotalDuration()
	if from >= len(events) {
		e.finish(p, gen, end)
		return
	}
	for _, ev := range events[from:] {
		ev := ev
		at := base + ev.Offset
		last := ev.ChordIndex == len(events)-1
		e.transport.ScheduleAt(p.ID, at, func() {
			e.fire(p.ID, gen, ev, at, end, last)
		})
	}
}

func (e *Engine) fire(id string, gen int, ev Event, at, end float64, last bool) {
	i, p := e.session.PartByID(id)
	if p == nil || e.cursor(id).gen != gen || p.State != core.Playing {
		return
	}
	e.instrumentFor(p).AttackRelease(ev.Notes, ev.Duration, at)
	if ev.ChordIndex < len(p.Chords) {
		p.Playing = core.SomeIndex(ev.ChordIndex)
	}
	c := e.cursor(id)
	c.at, c.fired = at, true
	defer e.emit(PlaybackChanged, i)
	if last {
		e.finish(p, gen, end)
	}
}

// finish queues what happens when the part reaches end: the next cycle when
// looping, a stop otherwise.
func (e *Engine) finish(p *core.Part, gen int, end float64) {
	id := p.ID
	if p.Looping && len(p.Chords) > 0 {
		e.schedule(p, end, 0)
		return
	}
	e.transport.ScheduleAt(id, end, func() {
		i, p := e.session.PartByID(id)
		if p == nil || e.cursor(id).gen != gen {
			return
		}
		e.stop(p)
		e.emit(PlaybackChanged, i)
	})
}

// Pause halts part i, keeping its position.
func (e *Engine) Pause(i int) error {
	p, err := e.part(i)
	if err != nil {
		return err
	}
	if p.State != core.Playing {
		return nil
	}
	e.cancel(p)
	p.State = core.Paused
	e.emit(PlaybackChanged, i)
	return nil
}

// Stop halts part i and rewinds it.
func (e *Engine) Stop(i int) error {
	p, err := e.part(i)
	if err != nil {
		return err
	}
	if p.State == core.Stopped && !p.Playing.IsSet() {
		return nil
	}
	e.stop(p)
	e.emit(PlaybackChanged, i)
	return nil
}

func (e *Engine) stop(p *core.Part) {
	e.cancel(p)
	p.Playing = core.NoIndex
	p.State = core.Stopped
}

// TogglePlay plays a part that is not playing and pauses one that is.
func (e *Engine) TogglePlay(i int) error {
	p, err := e.part(i)
	if err != nil {
		return err
	}
	if p.State == core.Playing {
		return e.Pause(i)
	}
	return e.Play(i)
}

// ToggleLoop flips looping. A playing part picks it up when it reaches its end.
func (e *Engine) ToggleLoop(i int) error {
	p, err := e.part(i)
	if err != nil {
		return err
	}
	p.Looping = !p.Looping
	e.emit(PlaybackChanged, i)
	return nil
}

// PlayAll plays every part.
func (e *Engine) PlayAll() {
	e.transport.Start()
	for i := range e.session.Parts {
		_ = e.Play(i)
	}
}

// PauseAll pauses every playing part and the transport.
func (e *Engine) PauseAll() {
	for i := range e.session.Parts {
		_ = e.Pause(i)
	}
	e.transport.Pause()
}

// StopAll stops every part and rewinds the transport.
func (e *Engine) StopAll() {
	for i := range e.session.Parts {
		_ = e.Stop(i)
	}
	e.transport.Stop()
}
