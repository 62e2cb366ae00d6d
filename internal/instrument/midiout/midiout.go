// Package midiout plays parts on a MIDI output port.
package midiout

import (
	"fmt"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"

	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/midiio"
)

// Instrument sends note on and note off messages to one channel.
type Instrument struct {
	send     func(midi.Message) error
	out      drivers.Out
	channel  uint8
	velocity uint8
	logger   *zap.Logger
	after    func(time.Duration, func()) *time.Timer

	mu       sync.Mutex
	sounding map[uint8]int
	timers   map[*time.Timer]struct{}
}

// Option configures an Instrument.
type Option func(*Instrument)

// WithChannel sets the MIDI channel, 0 to 15.
func WithChannel(ch uint8) Option {
	return func(i *Instrument) {
		i.channel = ch & 0x0f
	}
}

// WithVelocity sets the note on velocity.
func WithVelocity(v uint8) Option {
	return func(i *Instrument) {
		if v > 0 && v < 128 {
			i.velocity = v
		}
	}
}

// WithLogger sets the logger for send failures.
func WithLogger(l *zap.Logger) Option {
	return func(i *Instrument) {
		if l != nil {
			i.logger = l
		}
	}
}

// Open connects to the output port matching name.
func Open(name string, opts ...Option) (*Instrument, error) {
	out, err := midiio.FindOutput(name)
	if err != nil {
		return nil, err
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open MIDI output %s: %w", out.String(), err)
	}
	i := New(send, opts...)
	i.out = out
	return i, nil
}

// New builds an instrument around a send function.
func New(send func(midi.Message) error, opts ...Option) *Instrument {
	i := &Instrument{
		send:     send,
		velocity: 100,
		logger:   zap.NewNop(),
		after:    time.AfterFunc,
		sounding: make(map[uint8]int),
		timers:   make(map[*time.Timer]struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Instrument) noteOn(p core.Pitch) {
	key := p.MIDI()
	i.mu.Lock()
	i.sounding[key]++
	i.mu.Unlock()
	if err := i.send(midi.NoteOn(i.channel, key, i.velocity)); err != nil {
		i.logger.Warn("note on failed", zap.String("note", p.String()), zap.Error(err))
	}
}

func (i *Instrument) noteOff(p core.Pitch) {
	key := p.MIDI()
	i.mu.Lock()
	if i.sounding[key] > 1 {
		i.sounding[key]--
	} else {
		delete(i.sounding, key)
	}
	i.mu.Unlock()
	if err := i.send(midi.NoteOff(i.channel, key)); err != nil {
		i.logger.Warn("note off failed", zap.String("note", p.String()), zap.Error(err))
	}
}

func (i *Instrument) Attack(pitches []core.Pitch) {
	for _, p := range pitches {
		i.noteOn(p)
	}
}

func (i *Instrument) Release(pitches []core.Pitch) {
	for _, p := range pitches {
		i.noteOff(p)
	}
}

// AttackRelease sounds pitches now and releases them after duration seconds.
// The callback already fires at its scheduled time, so at is not used.
func (i *Instrument) AttackRelease(pitches []core.Pitch, duration, at float64) {
	if len(pitches) == 0 {
		return
	}
	i.Attack(pitches)
	notes := append([]core.Pitch(nil), pitches...)
	var t *time.Timer
	i.mu.Lock()
	t = i.after(time.Duration(duration*float64(time.Second)), func() {
		i.mu.Lock()
		delete(i.timers, t)
		i.mu.Unlock()
		i.Release(notes)
	})
	i.timers[t] = struct{}{}
	i.mu.Unlock()
}

// Sounding returns how many notes are currently on.
func (i *Instrument) Sounding() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.sounding)
}

// Close silences every sounding note and closes the port.
func (i *Instrument) Close() error {
	i.mu.Lock()
	for t := range i.timers {
		t.Stop()
	}
	i.timers = make(map[*time.Timer]struct{})
	keys := make([]uint8, 0, len(i.sounding))
	for k := range i.sounding {
		keys = append(keys, k)
	}
	i.sounding = make(map[uint8]int)
	i.mu.Unlock()

	for _, k := range keys {
		_ = i.send(midi.NoteOff(i.channel, k))
	}
	if i.out != nil {
		return i.out.Close()
	}
	return nil
}
