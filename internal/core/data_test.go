package core

import (
	"errors"
	"testing"
	"time"

	staveerrors "github.com/tessro/stave/internal/errors"
)

var testTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestEncodeDecodeParts(t *testing.T) {
	p := NewPart()
	p.Chords = []Chord{NewChord(pitches("C4", "E4"), 0.5), NewRest(0.25)}
	p.Chords[0].Selected = true

	b, err := EncodeParts([]*Part{p, NewPart()})
	if err != nil {
		t.Fatalf("EncodeParts() error = %v", err)
	}
	want := `[{"chords":[{"notes":["C4","E4"],"duration":0.5},{"notes":[],"duration":0.25}]},{"chords":[]}]`
	if string(b) != want {
		t.Errorf("EncodeParts() = %s\nwant %s", b, want)
	}

	data, err := DecodeParts(b)
	if err != nil {
		t.Fatalf("DecodeParts() error = %v", err)
	}
	parts, err := FromData(data)
	if err != nil {
		t.Fatalf("FromData() error = %v", err)
	}
	if len(parts) != 2 || len(parts[0].Chords) != 2 {
		t.Fatalf("FromData() = %d parts", len(parts))
	}
	if parts[0].Chords[0].Selected {
		t.Error("selection should not be persisted")
	}
	if parts[0].ID == p.ID {
		t.Error("FromData() should build fresh parts")
	}
}

func TestFromDataErrors(t *testing.T) {
	_, err := FromData([]PartData{{Chords: []ChordData{{Notes: []string{"Q9"}, Duration: 1}}}})
	if !errors.Is(err, staveerrors.ErrUnknownPitch) {
		t.Errorf("FromData() error = %v, want ErrUnknownPitch", err)
	}
	_, err = FromData([]PartData{{Chords: []ChordData{{Notes: []string{"C4"}, Duration: 0}}}})
	if !errors.Is(err, staveerrors.ErrMalformedSession) {
		t.Errorf("FromData() error = %v, want ErrMalformedSession", err)
	}
	if _, err := DecodeParts([]byte("{nope")); !errors.Is(err, staveerrors.ErrMalformedSession) {
		t.Errorf("DecodeParts() error = %v, want ErrMalformedSession", err)
	}
}
