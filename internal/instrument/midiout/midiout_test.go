package midiout

import (
	"sync"
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/tessro/stave/internal/core"
)

type sink struct {
	mu   sync.Mutex
	msgs []midi.Message
}

func (s *sink) send(m midi.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, m)
	return nil
}

func (s *sink) count(kind midi.Type) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.msgs {
		if m.Is(kind) {
			n++
		}
	}
	return n
}

func TestAttackRelease(t *testing.T) {
	var s sink
	inst := New(s.send, WithChannel(2), WithVelocity(90))

	var fire func()
	var delay time.Duration
	inst.after = func(d time.Duration, f func()) *time.Timer {
		delay, fire = d, f
		return time.NewTimer(time.Hour)
	}

	pitches := []core.Pitch{core.MustParsePitch("C4"), core.MustParsePitch("E4")}
	inst.AttackRelease(pitches, 0.5, 3)
	if got := s.count(midi.NoteOnMsg); got != 2 {
		t.Fatalf("note ons = %d, want 2", got)
	}
	if delay != 500*time.Millisecond {
		t.Errorf("release after %v, want 500ms", delay)
	}
	if inst.Sounding() != 2 {
		t.Errorf("Sounding() = %d, want 2", inst.Sounding())
	}

	fire()
	if got := s.count(midi.NoteOffMsg); got != 2 {
		t.Errorf("note offs = %d, want 2", got)
	}
	if inst.Sounding() != 0 {
		t.Errorf("Sounding() = %d after release, want 0", inst.Sounding())
	}

	var ch, key, vel uint8
	if !s.msgs[0].GetNoteOn(&ch, &key, &vel) || ch != 2 || key != 60 || vel != 90 {
		t.Errorf("first message = %v", s.msgs[0])
	}
}

func TestRestIsSilent(t *testing.T) {
	var s sink
	inst := New(s.send)
	inst.AttackRelease(nil, 1, 0)
	if len(s.msgs) != 0 {
		t.Errorf("rest sent %d messages", len(s.msgs))
	}
}

func TestCloseSilences(t *testing.T) {
	var s sink
	inst := New(s.send)
	inst.Attack([]core.Pitch{core.MustParsePitch("G4")})
	inst.AttackRelease([]core.Pitch{core.MustParsePitch("A4")}, 60, 0)
	if err := inst.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := s.count(midi.NoteOffMsg); got != 2 {
		t.Errorf("note offs on close = %d, want 2", got)
	}
	if inst.Sounding() != 0 {
		t.Error("notes still sounding after Close")
	}
}
