package core

import (
	"errors"
	"testing"

	staveerrors "github.com/tessro/stave/internal/errors"
)

func TestParsePitch(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		midi    uint8
		wantErr bool
	}{
		{"C4", "C4", 60, false},
		{"C#5", "C#5", 73, false},
		{"a4", "A4", 69, false},
		{"B6", "B6", 95, false},
		{"E#4", "", 0, true},
		{"B#3", "", 0, true},
		{"H4", "", 0, true},
		{"C", "", 0, true},
		{"C#", "", 0, true},
		{"", "", 0, true},
		{"A9", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ParsePitch(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePitch(%q) expected error", tt.in)
				}
				if !errors.Is(err, staveerrors.ErrUnknownPitch) {
					t.Errorf("error = %v, want ErrUnknownPitch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePitch(%q) error = %v", tt.in, err)
			}
			if p.String() != tt.want {
				t.Errorf("String() = %q, want %q", p.String(), tt.want)
			}
			if p.MIDI() != tt.midi {
				t.Errorf("MIDI() = %d, want %d", p.MIDI(), tt.midi)
			}
		})
	}
}

func TestPitchFromMIDI(t *testing.T) {
	for key := uint8(0); key < 128; key++ {
		p := PitchFromMIDI(key)
		if p.MIDI() != key {
			t.Errorf("PitchFromMIDI(%d).MIDI() = %d", key, p.MIDI())
		}
		if p.Sharp && (p.Letter == 'E' || p.Letter == 'B') {
			t.Errorf("PitchFromMIDI(%d) = %s", key, p)
		}
	}
}

func TestTranspose(t *testing.T) {
	tests := []struct {
		in   string
		up   string
		down string
	}{
		{"B6", "B6", "A#6"},
		{"C4", "C#4", "C4"},
		{"F4", "F#4", "E4"},
		{"E4", "F4", "D#4"},
		{"B4", "C5", "A#4"},
		{"C5", "C#5", "B4"},
		{"C#4", "D4", "C4"},
		{"A#6", "B6", "A6"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p := MustParsePitch(tt.in)
			if got := TransposeUp(p).String(); got != tt.up {
				t.Errorf("TransposeUp(%s) = %s, want %s", tt.in, got, tt.up)
			}
			if got := TransposeDown(p).String(); got != tt.down {
				t.Errorf("TransposeDown(%s) = %s, want %s", tt.in, got, tt.down)
			}
		})
	}
}

func TestPitchText(t *testing.T) {
	var p Pitch
	if err := p.UnmarshalText([]byte("D#5")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	b, _ := p.MarshalText()
	if string(b) != "D#5" {
		t.Errorf("MarshalText() = %q, want D#5", b)
	}
	if err := p.UnmarshalText([]byte("X1")); err == nil {
		t.Error("UnmarshalText(X1) expected error")
	}
}
