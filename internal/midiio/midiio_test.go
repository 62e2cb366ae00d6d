package midiio

import (
	"errors"
	"testing"

	"gitlab.com/gomidi/midi/v2"

	staveerrors "github.com/tessro/stave/internal/errors"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		msg  midi.Message
		want string
		down bool
		ok   bool
	}{
		{"note on", midi.NoteOn(0, 60, 100), "C4", true, true},
		{"note off", midi.NoteOff(1, 61), "C#4", false, true},
		{"zero velocity", midi.NoteOn(0, 64, 0), "E4", false, true},
		{"control change", midi.ControlChange(0, 7, 100), "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := Translate(tt.msg)
			if ok != tt.ok {
				t.Fatalf("Translate() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if ev.Pitch.String() != tt.want || ev.Down != tt.down {
				t.Errorf("Translate() = %s down=%v, want %s down=%v", ev.Pitch, ev.Down, tt.want, tt.down)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	ports := []Port{
		{Number: 0, Name: "Midi Through Port-0"},
		{Number: 1, Name: "Arturia KeyStep 32"},
	}
	tests := []struct {
		name string
		want int
	}{
		{"", 0},
		{"Arturia KeyStep 32", 1},
		{"keystep", 1},
		{"through", 0},
	}
	for _, tt := range tests {
		p, err := Match(ports, tt.name)
		if err != nil {
			t.Fatalf("Match(%q) error = %v", tt.name, err)
		}
		if p.Number != tt.want {
			t.Errorf("Match(%q) = %d, want %d", tt.name, p.Number, tt.want)
		}
	}

	if _, err := Match(ports, "launchpad"); !errors.Is(err, staveerrors.ErrPortNotFound) {
		t.Errorf("Match(launchpad) error = %v, want ErrPortNotFound", err)
	}
	if _, err := Match(nil, ""); !errors.Is(err, staveerrors.ErrNoMIDIPorts) {
		t.Errorf("Match(nil) error = %v, want ErrNoMIDIPorts", err)
	}
}
