package sequencer

import (
	"reflect"
	"testing"

	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/instrument"
)

func TestChordAppendOrdering(t *testing.T) {
	r := newRig(t)
	_ = r.e.ToggleRecord(0)

	r.e.KeyDown(core.MustParsePitch("C4"))
	r.e.KeyDown(core.MustParsePitch("E4"))
	r.clock.Advance(0.5)
	r.e.KeyUp(core.MustParsePitch("C4"))
	r.e.KeyUp(core.MustParsePitch("E4"))

	if got := r.chords(0); !reflect.DeepEqual(got, [][]string{{"C4", "E4"}}) {
		t.Fatalf("chords = %v, want [[C4 E4]]", got)
	}
	if got := r.durations(0); !reflect.DeepEqual(got, []float64{0.5}) {
		t.Errorf("durations = %v, want [0.5]", got)
	}

	var releases [][]string
	for _, c := range r.rec.Calls() {
		if c.Kind == instrument.CallRelease {
			releases = append(releases, c.Notes)
		}
	}
	if !reflect.DeepEqual(releases, [][]string{{"C4", "E4"}}) {
		t.Errorf("releases = %v, want one release of both keys", releases)
	}
}

func TestRestInsertion(t *testing.T) {
	r := newRig(t)
	_ = r.e.ToggleRecord(0)

	r.play(0.5, "C4")
	r.clock.Advance(2)
	r.play(0.5, "D4")

	want := [][]string{{"C4"}, nil, {"D4"}}
	if got := r.chords(0); !reflect.DeepEqual(got, want) {
		t.Fatalf("chords = %v, want %v", got, want)
	}
	if d := r.durations(0)[1]; !approx(d, 2) {
		t.Errorf("rest duration = %v, want 2", d)
	}
}

func TestNoRestBackToBack(t *testing.T) {
	r := newRig(t)
	_ = r.e.ToggleRecord(0)

	r.play(0.5, "C4")
	r.play(0.25, "D4")
	r.clock.Advance(0.001)
	r.play(0.25, "E4")

	if got := r.chords(0); len(got) != 3 {
		t.Errorf("chords = %v, want three chords and no rest", got)
	}
}

func TestNoRestBeforeFirstChord(t *testing.T) {
	r := newRig(t)
	r.play(0.5, "C4")
	_ = r.e.ToggleRecord(0)
	r.clock.Advance(1)
	r.play(0.5, "D4")

	if got := r.chords(0); !reflect.DeepEqual(got, [][]string{{"D4"}}) {
		t.Errorf("chords = %v, want [[D4]]", got)
	}
}

func TestRecordingCheckedAtRelease(t *testing.T) {
	r := newRig(t)
	_ = r.e.ToggleRecord(0)
	r.e.KeyDown(core.MustParsePitch("C4"))
	_ = r.e.ToggleRecord(0)
	r.clock.Advance(0.5)
	r.e.KeyUp(core.MustParsePitch("C4"))

	if n := len(r.e.Session().Parts[0].Chords); n != 0 {
		t.Errorf("chords = %d, want 0", n)
	}
	if r.e.Session().KeyPressed.Len() != 0 {
		t.Error("keys still held after release")
	}
}

func TestReleaseFollowsAttackInstrument(t *testing.T) {
	r := newRig(t)
	synth := &instrument.Recorder{}
	reg := instrument.NewRegistry(instrument.WithDefault(r.rec))
	reg.Register("synth", synth)
	r.e = New(WithClock(r.clock.Now), WithTransport(r.tr), WithInstruments(reg))
	i := r.e.AddPart()
	_ = r.e.SetInstrument(i, "synth")

	r.e.KeyDown(core.MustParsePitch("C4"))
	_ = r.e.SelectPart(i)
	r.e.KeyDown(core.MustParsePitch("E4"))
	r.clock.Advance(0.5)
	r.e.KeyUp(core.MustParsePitch("C4"))

	kinds := func(rec *instrument.Recorder) (attacks, releases [][]string) {
		for _, c := range rec.Calls() {
			switch c.Kind {
			case instrument.CallAttack:
				attacks = append(attacks, c.Notes)
			case instrument.CallRelease:
				releases = append(releases, c.Notes)
			}
		}
		return attacks, releases
	}
	attacks, releases := kinds(r.rec)
	if !reflect.DeepEqual(attacks, [][]string{{"C4"}, {"E4"}}) {
		t.Errorf("default attacks = %v, want C4 then E4", attacks)
	}
	if !reflect.DeepEqual(releases, [][]string{{"C4", "E4"}}) {
		t.Errorf("default releases = %v, want [[C4 E4]]", releases)
	}
	if n := len(synth.Calls()); n != 0 {
		t.Errorf("synth got %d calls, want 0", n)
	}

	r.e.KeyDown(core.MustParsePitch("G4"))
	r.e.KeyUp(core.MustParsePitch("G4"))
	if attacks, releases := kinds(synth); len(attacks) != 1 || len(releases) != 1 {
		t.Errorf("synth attacks = %v, releases = %v, want one of each", attacks, releases)
	}
}

func TestSharpsKeptInRecordedChord(t *testing.T) {
	r := newRig(t)
	_ = r.e.ToggleRecord(0)
	r.play(0.5, "C4", "C#4")
	if got := r.chords(0); !reflect.DeepEqual(got, [][]string{{"C4", "C#4"}}) {
		t.Errorf("chords = %v, want [[C4 C#4]]", got)
	}
}

func TestRepeatedAndUnknownKeys(t *testing.T) {
	r := newRig(t)
	_ = r.e.ToggleRecord(0)
	c4 := core.MustParsePitch("C4")

	r.e.KeyUp(c4)
	r.e.KeyDown(c4)
	r.e.KeyDown(c4)
	r.e.KeyDown(c4)
	r.clock.Advance(0.25)
	r.e.KeyUp(c4)
	r.e.KeyUp(c4)

	attacks := 0
	for _, c := range r.rec.Calls() {
		if c.Kind == instrument.CallAttack {
			attacks++
		}
	}
	if attacks != 1 {
		t.Errorf("attacks = %d, want 1", attacks)
	}
	if n := len(r.e.Session().Parts[0].Chords); n != 1 {
		t.Errorf("chords = %d, want 1", n)
	}
}

func TestRecordingQuantizes(t *testing.T) {
	r := newRig(t)
	_ = r.e.ToggleRecord(0)
	r.play(0.27, "C4")
	if got := r.durations(0); !reflect.DeepEqual(got, []float64{0.25}) {
		t.Errorf("durations = %v, want [0.25]", got)
	}

	raw := newRig(t, WithQuantize(false))
	_ = raw.e.ToggleRecord(0)
	raw.play(0.27, "C4")
	if got := raw.durations(0)[0]; !approx(got, 0.27) {
		t.Errorf("unquantized duration = %v, want 0.27", got)
	}
}

func TestDeleteSelected(t *testing.T) {
	r := newRig(t)
	_ = r.e.ToggleRecord(0)
	r.play(0.5, "C4")
	r.play(0.5, "D4")
	r.play(0.5, "E4")

	// Recording with nothing selected drops the last chord.
	r.e.DeleteSelected()
	if got := r.chords(0); !reflect.DeepEqual(got, [][]string{{"C4"}, {"D4"}}) {
		t.Fatalf("chords = %v", got)
	}

	_ = r.e.Select(0, 0)
	r.e.DeleteSelected()
	if got := r.chords(0); !reflect.DeepEqual(got, [][]string{{"D4"}}) {
		t.Fatalf("chords = %v", got)
	}

	// The gap before the next chord is not a rest once the release is forgotten.
	r.clock.Advance(3)
	r.play(0.5, "F4")
	if got := r.chords(0); !reflect.DeepEqual(got, [][]string{{"D4"}, {"F4"}}) {
		t.Errorf("chords = %v, want no rest", got)
	}
}

func TestDeleteSelectedAcrossParts(t *testing.T) {
	r := newRig(t, WithParts([]*core.Part{partWith(0.5, 0.5), partWith(0.5, 0.5, 0.5)}))
	_ = r.e.Select(0, 1)
	_ = r.e.Select(1, 0)
	r.e.DeleteSelected()
	if a, b := len(r.e.Session().Parts[0].Chords), len(r.e.Session().Parts[1].Chords); a != 1 || b != 2 {
		t.Errorf("chord counts = %d, %d, want 1, 2", a, b)
	}

	// Not recording and nothing selected: nothing to do.
	r.e.DeleteSelected()
	if n := len(r.e.Session().Parts[0].Chords); n != 1 {
		t.Errorf("chords = %d, want 1", n)
	}
}
