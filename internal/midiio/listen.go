package midiio

import (
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"

	"github.com/tessro/stave/internal/core"
)

// NoteEvent is a key going down or up.
type NoteEvent struct {
	Pitch    core.Pitch
	Down     bool
	Channel  uint8
	Velocity uint8
}

// Translate converts a MIDI message into a note event. Note-on with zero
// velocity counts as note-off. Other messages are ignored.
func Translate(msg midi.Message) (NoteEvent, bool) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return NoteEvent{Pitch: core.PitchFromMIDI(key), Down: true, Channel: ch, Velocity: vel}, true
	case msg.GetNoteEnd(&ch, &key):
		return NoteEvent{Pitch: core.PitchFromMIDI(key), Channel: ch}, true
	}
	return NoteEvent{}, false
}

// Listen opens in and calls handle for every note event. handle runs on the
// driver's goroutine. Call stop to end listening.
func Listen(in drivers.In, logger *zap.Logger, handle func(NoteEvent)) (stop func(), err error) {
	if !in.IsOpen() {
		if err := in.Open(); err != nil {
			return nil, err
		}
	}
	stopFn, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		if ev, ok := Translate(msg); ok {
			handle(ev)
		}
	}, midi.HandleError(func(listenErr error) {
		logger.Warn("MIDI listener error", zap.String("port", in.String()), zap.Error(listenErr))
	}))
	if err != nil {
		_ = in.Close()
		return nil, err
	}
	return func() {
		stopFn()
		_ = in.Close()
	}, nil
}
