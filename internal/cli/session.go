package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/instrument"
	"github.com/tessro/stave/internal/instrument/midiout"
	"github.com/tessro/stave/internal/midiio"
	"github.com/tessro/stave/internal/notation"
	"github.com/tessro/stave/internal/sequencer"
	"github.com/tessro/stave/internal/store"
	"github.com/tessro/stave/internal/transport"
)

// session is an engine running on its loop, with the resources it owns.
type session struct {
	loop     *sequencer.Loop
	store    *store.FileStore
	registry *instrument.Registry
	clock    *transport.Clock

	ctx    context.Context
	cancel context.CancelFunc
	done   chan error
	stops  []func()
}

func openStore() (*store.FileStore, error) {
	st, err := store.NewFileStore(cfg.Session.File,
		store.WithDebounce(time.Duration(cfg.Session.Debounce)*time.Millisecond),
		store.WithLogger(logger.Named("store")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	return st, nil
}

func midiOptions() []midiout.Option {
	ch := max(cfg.MIDI.Channel-1, 0)
	return []midiout.Option{
		midiout.WithChannel(uint8(ch)),
		midiout.WithVelocity(uint8(cfg.MIDI.Velocity)),
		midiout.WithLogger(logger.Named("midiout")),
	}
}

// newRegistry builds the instrument registry. "midi:<port>" ids open output
// ports on demand. A configured output becomes the default instrument.
func newRegistry(output string) *instrument.Registry {
	opts := []instrument.RegistryOption{instrument.WithLogger(logger.Named("instrument"))}
	if output != "" {
		inst, err := midiout.Open(output, midiOptions()...)
		if err != nil {
			logger.Warn("MIDI output unavailable, staying silent", zap.String("port", output), zap.Error(err))
		} else {
			opts = append(opts, instrument.WithDefault(inst))
		}
	}
	reg := instrument.NewRegistry(opts...)
	reg.RegisterFactory("midi", func(name string) (core.Instrument, error) {
		return midiout.Open(name, midiOptions()...)
	})
	return reg
}

func engineOptions(st core.Store, reg *instrument.Registry, t core.Transport) []sequencer.Option {
	return []sequencer.Option{
		sequencer.WithStore(st),
		sequencer.WithInstruments(reg),
		sequencer.WithTransport(t),
		sequencer.WithLogger(logger.Named("engine")),
		sequencer.WithLadder(notation.Ladder{BPM: cfg.Tempo.BPM}),
		sequencer.WithQuantize(cfg.Session.QuantizeEnabled()),
		sequencer.WithMaxUndo(cfg.Session.MaxUndo),
	}
}

// startSession hydrates the engine from the session file and runs its loop
// until ctx is done or Close is called.
func startSession(ctx context.Context, output string) (*session, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	reg := newRegistry(output)
	loop := sequencer.NewLoop(sequencer.DefaultQueueSize)
	clock := transport.NewClock(loop.Post)

	e := sequencer.New(engineOptions(st, reg, clock)...)
	e.SetOctave(cfg.Keyboard.Octave)

	ctx, cancel := context.WithCancel(ctx)
	s := &session{
		loop:     loop,
		store:    st,
		registry: reg,
		clock:    clock,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan error, 1),
	}
	go func() { s.done <- loop.Run(ctx, e) }()
	logger.Debug("session started", zap.String("file", st.Path()))
	return s, nil
}

// listenMIDI feeds note events from the named input port into the engine.
func (s *session) listenMIDI(name string) (string, error) {
	in, err := midiio.FindInput(name)
	if err != nil {
		return "", fmt.Errorf("failed to open MIDI input: %w", err)
	}
	log := logger.Named("midi")
	stop, err := midiio.Listen(in, log, func(ev midiio.NoteEvent) {
		err := s.loop.Do(s.ctx, func(e *sequencer.Engine) {
			if ev.Down {
				e.KeyDown(ev.Pitch)
			} else {
				e.KeyUp(ev.Pitch)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Debug("dropped note", zap.Stringer("pitch", ev.Pitch), zap.Error(err))
		}
	})
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", in.String(), err)
	}
	s.stops = append(s.stops, stop)
	logger.Info("listening for MIDI notes", zap.String("port", in.String()))
	return in.String(), nil
}

// Close stops the loop, silences instruments and writes the session file.
func (s *session) Close() error {
	for _, stop := range s.stops {
		stop()
	}
	s.cancel()
	<-s.done
	s.clock.Stop()

	var errs []error
	if err := s.store.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to save session: %w", err))
	}
	if err := s.registry.Close(); err != nil {
		errs = append(errs, err)
	}
	midiio.Close()
	return errors.Join(errs...)
}
