// Package sequencer implements the recording, playback, editing and undo
// state machine on top of the core model.
package sequencer

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/instrument"
	"github.com/tessro/stave/internal/notation"
	"github.com/tessro/stave/internal/transport"
)

// DefaultMaxUndo bounds the undo history.
const DefaultMaxUndo = 256

// InstrumentResolver maps a part's instrument id to an instrument.
type InstrumentResolver interface {
	Instrument(id string) core.Instrument
}

// Engine owns a session. Its methods must be called from one goroutine at a
// time; Loop provides that.
type Engine struct {
	session     *core.Session
	ladder      notation.Ladder
	quantize    bool
	transport   core.Transport
	instruments InstrumentResolver
	store       core.Store
	logger      *zap.Logger
	clock       func() time.Time
	history     *History
	octave      int

	// rest is the gap before the chord being held, computed at key down.
	rest float64
	// holding is the instrument the held keys were attacked on.
	holding core.Instrument
	// retired keeps removed parts so undo can bring back their bindings.
	retired map[string]*core.Part

	cursors  map[string]*cursor
	onChange func(Change)
}

// Option configures an Engine.
type Option func(*Engine)

// WithTransport sets the clock that drives playback.
func WithTransport(t core.Transport) Option {
	return func(e *Engine) {
		e.transport = t
	}
}

// WithInstruments sets how instrument ids are resolved.
func WithInstruments(r InstrumentResolver) Option {
	return func(e *Engine) {
		e.instruments = r
	}
}

// WithStore sets where parts are loaded from and saved to.
func WithStore(s core.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the wall clock used to time key presses.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.clock = now
		}
	}
}

// WithLadder sets the tempo used for quantizing.
func WithLadder(l notation.Ladder) Option {
	return func(e *Engine) {
		e.ladder = l
	}
}

// WithQuantize controls whether recorded durations snap to the ladder.
func WithQuantize(enabled bool) Option {
	return func(e *Engine) {
		e.quantize = enabled
	}
}

// WithMaxUndo bounds the undo history.
func WithMaxUndo(n int) Option {
	return func(e *Engine) {
		if n > 1 {
			e.history.max = n
		}
	}
}

// WithParts starts the session from the given parts instead of the store.
func WithParts(parts []*core.Part) Option {
	return func(e *Engine) {
		e.session = core.NewSession(parts)
	}
}

// New builds an engine. Parts come from WithParts, then the store, then a
// single empty part.
func New(opts ...Option) *Engine {
	e := &Engine{
		ladder:      notation.Default,
		quantize:    true,
		transport:   transport.NewManual(),
		instruments: instrument.NewRegistry(),
		logger:      zap.NewNop(),
		clock:       time.Now,
		history:     NewHistory(DefaultMaxUndo),
		octave:      core.LowestOctave,
		cursors:     make(map[string]*cursor),
		retired:     make(map[string]*core.Part),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.session == nil {
		e.session = core.NewSession(e.hydrate())
	}
	e.history.Push(e.snapshot())
	return e
}

// hydrate loads parts from the store, falling back to nothing on any error.
func (e *Engine) hydrate() []*core.Part {
	if e.store == nil {
		return nil
	}
	data, err := e.store.Load()
	if err != nil {
		e.logger.Warn("failed to load session, starting empty", zap.Error(err))
		return nil
	}
	parts, err := core.FromData(data)
	if err != nil {
		e.logger.Warn("invalid session data, starting empty", zap.Error(err))
		return nil
	}
	e.logger.Debug("session loaded", zap.Int("parts", len(parts)))
	return parts
}

// Session exposes the live session. Callers must not retain it outside the loop.
func (e *Engine) Session() *core.Session {
	return e.session
}

// Ladder returns the duration ladder in use.
func (e *Engine) Ladder() notation.Ladder {
	return e.ladder
}

// Octave is the keyboard's base octave.
func (e *Engine) Octave() int {
	return e.octave
}

// History returns the undo history.
func (e *Engine) History() *History {
	return e.history
}

func (e *Engine) instrumentFor(p *core.Part) core.Instrument {
	return e.instruments.Instrument(p.InstrumentID)
}

func (e *Engine) snapshot() []byte {
	parts, err := core.EncodeParts(e.session.Parts)
	if err != nil {
		e.logger.Error("failed to snapshot parts", zap.Error(err))
		return nil
	}
	snap := undoEntry{Parts: parts}
	for _, p := range e.session.Parts {
		snap.IDs = append(snap.IDs, p.ID)
	}
	b, err := json.Marshal(snap)
	if err != nil {
		e.logger.Error("failed to snapshot parts", zap.Error(err))
		return nil
	}
	return b
}

// commit records the chord data in history and persists it when it changed.
func (e *Engine) commit() {
	if !e.history.Push(e.snapshot()) {
		return
	}
	e.persist()
}

func (e *Engine) persist() {
	if e.store == nil {
		return
	}
	if err := e.store.Save(core.ToData(e.session.Parts)); err != nil {
		e.logger.Error("failed to save session", zap.Error(err))
	}
}

// change returns a func that commits and announces a mutation. Use as
// defer e.change(kind, part)().
func (e *Engine) change(kind ChangeKind, part int) func() {
	return func() {
		e.commit()
		e.emit(kind, part)
	}
}

func (e *Engine) emit(kind ChangeKind, part int) {
	if e.onChange != nil {
		e.onChange(Change{Kind: kind, Part: part})
	}
}
