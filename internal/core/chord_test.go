package core

import (
	"reflect"
	"testing"
)

func pitches(names ...string) []Pitch {
	out := make([]Pitch, len(names))
	for i, n := range names {
		out[i] = MustParsePitch(n)
	}
	return out
}

func TestNewChordDedupe(t *testing.T) {
	c := NewChord(pitches("E4", "C4", "E4", "G4", "C#4", "C4"), 0.5)
	want := []string{"E4", "C4", "G4", "C#4"}
	if got := PitchNames(c.Notes); !reflect.DeepEqual(got, want) {
		t.Errorf("Notes = %v, want %v", got, want)
	}
	if c.IsRest() {
		t.Error("IsRest() = true for chord with notes")
	}
	if !NewRest(1).IsRest() {
		t.Error("IsRest() = false for rest")
	}
}

func TestChordTranspose(t *testing.T) {
	c := NewChord(pitches("C#4", "D4"), 1)
	down := c.Transpose(false)
	if got := PitchNames(down.Notes); !reflect.DeepEqual(got, []string{"C4", "C#4"}) {
		t.Errorf("Transpose(down) = %v, want [C4 C#4]", got)
	}
	up := NewChord(pitches("E4", "G4"), 1).Transpose(true)
	if got := PitchNames(up.Notes); !reflect.DeepEqual(got, []string{"F4", "G#4"}) {
		t.Errorf("Transpose(up) = %v", got)
	}
	if PitchNames(c.Notes)[0] != "C#4" {
		t.Error("Transpose modified the original chord")
	}
}

func TestPartDurations(t *testing.T) {
	p := NewPart()
	p.Chords = []Chord{
		NewChord(pitches("C4"), 0.5),
		NewRest(0.25),
		NewChord(pitches("D4"), 0.25),
	}
	if got := p.TotalDuration(); got != 1 {
		t.Errorf("TotalDuration() = %v, want 1", got)
	}
	if got := p.OffsetOf(2); got != 0.75 {
		t.Errorf("OffsetOf(2) = %v, want 0.75", got)
	}
	if p.SelectedIndex().IsSet() {
		t.Error("SelectedIndex() set with nothing selected")
	}
	p.Chords[1].Selected = true
	if !p.SelectedIndex().Is(1) {
		t.Errorf("SelectedIndex() = %v, want 1", p.SelectedIndex())
	}
}

func TestIndex(t *testing.T) {
	if _, ok := NoIndex.Get(); ok {
		t.Error("NoIndex.Get() ok = true")
	}
	i, ok := SomeIndex(0).Get()
	if !ok || i != 0 {
		t.Errorf("SomeIndex(0).Get() = %d, %v", i, ok)
	}
	b, _ := NoIndex.MarshalJSON()
	if string(b) != "null" {
		t.Errorf("NoIndex JSON = %s", b)
	}
	var x Index
	if err := x.UnmarshalJSON([]byte("3")); err != nil || !x.Is(3) {
		t.Errorf("UnmarshalJSON(3) = %v, %v", x, err)
	}
}

func TestHeldKeysOrder(t *testing.T) {
	var h HeldKeys
	now := testTime
	if !h.Press(MustParsePitch("E4"), now) {
		t.Fatal("first press rejected")
	}
	h.Press(MustParsePitch("C4"), now)
	if h.Press(MustParsePitch("E4"), now) {
		t.Error("repeated press accepted")
	}
	if got := PitchNames(h.Pitches()); !reflect.DeepEqual(got, []string{"E4", "C4"}) {
		t.Errorf("Pitches() = %v", got)
	}
	h.Clear()
	if h.Len() != 0 || h.Has(MustParsePitch("C4")) {
		t.Error("Clear() left keys held")
	}
}
