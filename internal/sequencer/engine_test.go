package sequencer

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/instrument"
	"github.com/tessro/stave/internal/transport"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(seconds float64) {
	c.t = c.t.Add(time.Duration(seconds * float64(time.Second)))
}

type rig struct {
	e     *Engine
	clock *fakeClock
	tr    *transport.Manual
	rec   *instrument.Recorder
}

func newRig(t *testing.T, opts ...Option) *rig {
	t.Helper()
	r := &rig{
		clock: &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		tr:    transport.NewManual(),
		rec:   &instrument.Recorder{},
	}
	base := []Option{
		WithClock(r.clock.Now),
		WithTransport(r.tr),
		WithInstruments(instrument.NewRegistry(instrument.WithDefault(r.rec))),
	}
	r.e = New(append(base, opts...)...)
	return r
}

// play holds names together for seconds, then releases them in order.
func (r *rig) play(seconds float64, names ...string) {
	for _, n := range names {
		r.e.KeyDown(core.MustParsePitch(n))
	}
	r.clock.Advance(seconds)
	for _, n := range names {
		r.e.KeyUp(core.MustParsePitch(n))
	}
}

func (r *rig) chords(part int) [][]string {
	var out [][]string
	for _, c := range r.e.Session().Parts[part].Chords {
		out = append(out, core.PitchNames(c.Notes))
	}
	return out
}

func (r *rig) durations(part int) []float64 {
	var out []float64
	for _, c := range r.e.Session().Parts[part].Chords {
		out = append(out, c.Duration)
	}
	return out
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func approxAll(got, want []float64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !approx(got[i], want[i]) {
			return false
		}
	}
	return true
}

func partWith(durations ...float64) *core.Part {
	p := core.NewPart()
	names := []string{"C4", "D4", "E4", "F4", "G4", "A4", "B4"}
	for i, d := range durations {
		p.Chords = append(p.Chords, core.NewChord([]core.Pitch{core.MustParsePitch(names[i%len(names)])}, d))
	}
	return p
}

type memStore struct {
	data  []core.PartData
	err   error
	saves int
}

func (m *memStore) Load() ([]core.PartData, error) { return m.data, m.err }

func (m *memStore) Save(data []core.PartData) error {
	m.saves++
	m.data = data
	return nil
}

func TestNewStartsWithOnePart(t *testing.T) {
	r := newRig(t)
	s := r.e.Session()
	if len(s.Parts) != 1 || s.Current != 0 {
		t.Fatalf("parts = %d, current = %d", len(s.Parts), s.Current)
	}
	if r.e.CanUndo() {
		t.Error("CanUndo() = true on a fresh engine")
	}
}

func TestNewFromStore(t *testing.T) {
	store := &memStore{data: []core.PartData{
		{Chords: []core.ChordData{{Notes: []string{"C4"}, Duration: 0.5}}},
		{},
	}}
	r := newRig(t, WithStore(store))
	if n := len(r.e.Session().Parts); n != 2 {
		t.Fatalf("parts = %d, want 2", n)
	}
	if got := r.chords(0); !reflect.DeepEqual(got, [][]string{{"C4"}}) {
		t.Errorf("chords = %v", got)
	}
	if store.saves != 0 {
		t.Errorf("saves = %d after load, want 0", store.saves)
	}
}

func TestNewFailsSoft(t *testing.T) {
	tests := []struct {
		name  string
		store *memStore
	}{
		{"load error", &memStore{err: errors.New("disk on fire")}},
		{"unknown pitch", &memStore{data: []core.PartData{{Chords: []core.ChordData{{Notes: []string{"H2"}, Duration: 1}}}}}},
		{"nothing saved", &memStore{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t, WithStore(tt.store))
			s := r.e.Session()
			if len(s.Parts) != 1 || len(s.Parts[0].Chords) != 0 {
				t.Errorf("want a single empty part, got %d parts", len(s.Parts))
			}
		})
	}
}

func TestCommitSaves(t *testing.T) {
	store := &memStore{}
	r := newRig(t, WithStore(store))
	_ = r.e.ToggleRecord(0)
	r.play(0.5, "C4")
	if store.saves != 1 {
		t.Fatalf("saves = %d, want 1", store.saves)
	}
	if len(store.data) != 1 || len(store.data[0].Chords) != 1 {
		t.Errorf("saved %+v", store.data)
	}
	// Selection is not persisted, so it does not save.
	_ = r.e.Select(0, 0)
	if store.saves != 1 {
		t.Errorf("saves = %d after select, want 1", store.saves)
	}
}
