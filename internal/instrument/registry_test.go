package instrument

import (
	"errors"
	"testing"

	"github.com/tessro/stave/internal/core"
	staveerrors "github.com/tessro/stave/internal/errors"
)

func TestRegistryDefaults(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Instrument(DefaultID).(Silent); !ok {
		t.Error("default instrument should be Silent")
	}
	if _, err := r.Resolve("nope"); !errors.Is(err, staveerrors.ErrUnknownInstrument) {
		t.Errorf("Resolve(nope) error = %v, want ErrUnknownInstrument", err)
	}
	if _, ok := r.Instrument("nope").(Silent); !ok {
		t.Error("unknown id should fall back to default")
	}
}

func TestRegistryFactoryCaches(t *testing.T) {
	r := NewRegistry()
	opened := 0
	r.RegisterFactory("midi", func(name string) (core.Instrument, error) {
		opened++
		if name == "broken" {
			return nil, errors.New("no such port")
		}
		return &Recorder{}, nil
	})

	a, err := r.Resolve("midi:Synth")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	b, _ := r.Resolve("midi:Synth")
	if a != b || opened != 1 {
		t.Errorf("factory opened %d times, want 1", opened)
	}
	if _, err := r.Resolve("midi:broken"); err == nil {
		t.Error("Resolve(midi:broken) expected error")
	}
}

func TestRegistryRemembersFailedIDs(t *testing.T) {
	rec := &Recorder{}
	r := NewRegistry(WithDefault(rec))
	opened := 0
	r.RegisterFactory("midi", func(name string) (core.Instrument, error) {
		opened++
		return nil, errors.New("no such port")
	})

	for i := 0; i < 3; i++ {
		if got := r.Instrument("midi:Gone"); got != rec {
			t.Fatalf("Instrument(midi:Gone) = %v, want the default", got)
		}
	}
	if opened != 1 {
		t.Errorf("factory opened %d times, want 1", opened)
	}

	synth := &Recorder{}
	r.Register("midi:Gone", synth)
	if got := r.Instrument("midi:Gone"); got != synth {
		t.Error("registering a failed id should replace the fallback")
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	c4 := core.MustParsePitch("C4")
	r.Attack([]core.Pitch{c4})
	r.AttackRelease([]core.Pitch{c4}, 0.5, 1)
	r.Release([]core.Pitch{c4})

	if n := len(r.Calls()); n != 3 {
		t.Fatalf("Calls() = %d, want 3", n)
	}
	played := r.Played()
	if len(played) != 1 || played[0].Duration != 0.5 || played[0].At != 1 {
		t.Errorf("Played() = %+v", played)
	}
	r.Reset()
	if len(r.Calls()) != 0 {
		t.Error("Reset() kept calls")
	}
}
