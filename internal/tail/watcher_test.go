package tail

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/sequencer"
)

func chord(value string, notes ...string) sequencer.ChordView {
	return sequencer.ChordView{Notes: notes, Value: value, Duration: 0.5}
}

func part(id, state string, chords ...sequencer.ChordView) sequencer.PartView {
	return sequencer.PartView{ID: id, State: state, Chords: chords, Playing: core.NoIndex}
}

func session(parts ...sequencer.PartView) *sequencer.SessionView {
	return &sequencer.SessionView{Parts: parts}
}

func types(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func equalTypes(a, b []EventType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDiffViews(t *testing.T) {
	playing := part("a", "playing", chord("4n", "C4"))
	playing.Playing = core.SomeIndex(0)

	recording := part("a", "stopped")
	recording.Recording = true

	looping := part("a", "stopped")
	looping.Looping = true

	tests := []struct {
		name       string
		prev, curr *sequencer.SessionView
		want       []EventType
	}{
		{
			name: "first view",
			curr: session(part("a", "stopped")),
			want: nil,
		},
		{
			name: "no change",
			prev: session(part("a", "stopped", chord("4n", "C4"))),
			curr: session(part("a", "stopped", chord("4n", "C4"))),
			want: nil,
		},
		{
			name: "chord recorded",
			prev: session(part("a", "stopped")),
			curr: session(part("a", "stopped", chord("4n", "C4", "E4"))),
			want: []EventType{EventChordRecorded},
		},
		{
			name: "chord and rest recorded",
			prev: session(part("a", "stopped")),
			curr: session(part("a", "stopped", chord("8n"), chord("4n", "C4"))),
			want: []EventType{EventChordRecorded, EventChordRecorded},
		},
		{
			name: "chord deleted",
			prev: session(part("a", "stopped", chord("4n", "C4"))),
			curr: session(part("a", "stopped")),
			want: []EventType{EventChordDeleted},
		},
		{
			name: "chord transposed",
			prev: session(part("a", "stopped", chord("4n", "C4"))),
			curr: session(part("a", "stopped", chord("4n", "C#4"))),
			want: []EventType{EventChordEdited},
		},
		{
			name: "play starts",
			prev: session(part("a", "stopped", chord("4n", "C4"))),
			curr: session(playing),
			want: []EventType{EventPlay, EventChordPlaying},
		},
		{
			name: "pause",
			prev: session(playing),
			curr: session(part("a", "paused", chord("4n", "C4"))),
			want: []EventType{EventPause},
		},
		{
			name: "stop",
			prev: session(playing),
			curr: session(part("a", "stopped", chord("4n", "C4"))),
			want: []EventType{EventStop},
		},
		{
			name: "record toggled",
			prev: session(part("a", "stopped")),
			curr: session(recording),
			want: []EventType{EventRecording},
		},
		{
			name: "loop toggled",
			prev: session(part("a", "stopped")),
			curr: session(looping),
			want: []EventType{EventLoop},
		},
		{
			name: "part added",
			prev: session(part("a", "stopped")),
			curr: session(part("a", "stopped"), part("b", "stopped")),
			want: []EventType{EventPartAdded},
		},
		{
			name: "part removed shifts the rest",
			prev: session(part("a", "stopped"), part("b", "stopped")),
			curr: session(part("b", "stopped")),
			want: []EventType{EventPartRemoved},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types(diffViews(tt.prev, tt.curr))
			if !equalTypes(got, tt.want) {
				t.Errorf("diffViews() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiffViewsChordPayload(t *testing.T) {
	events := diffViews(
		session(part("a", "stopped"), part("b", "stopped")),
		session(part("a", "stopped"), part("b", "stopped", chord("2n", "G4"))),
	)
	if len(events) != 1 {
		t.Fatalf("events = %v", types(events))
	}
	e := events[0]
	if e.Part != 1 || e.Chord == nil || e.Chord.Value != "2n" {
		t.Errorf("event = %+v", e)
	}
}

type fakeSource struct {
	mu      sync.Mutex
	view    sequencer.SessionView
	changes chan sequencer.Change
}

func (f *fakeSource) View(context.Context) (sequencer.SessionView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view, nil
}

func (f *fakeSource) Subscribe(int) (<-chan sequencer.Change, func()) {
	return f.changes, func() {}
}

func (f *fakeSource) set(v *sequencer.SessionView, c sequencer.Change) {
	f.mu.Lock()
	f.view = *v
	f.mu.Unlock()
	f.changes <- c
}

func TestWatcherFollowsChanges(t *testing.T) {
	src := &fakeSource{
		view:    *session(part("a", "stopped", chord("4n", "C4"))),
		changes: make(chan sequencer.Change, 4),
	}
	w := NewWatcher(src, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Let Start take its initial view before changing anything.
	time.Sleep(20 * time.Millisecond)
	src.set(session(part("a", "stopped")), sequencer.Change{Kind: sequencer.Undone})

	var got []EventType
	timeout := time.After(time.Second)
	for len(got) < 2 {
		select {
		case e := <-w.Events():
			got = append(got, e.Type)
		case <-timeout:
			t.Fatalf("events = %v, want undo and delete", got)
		}
	}
	if !equalTypes(got, []EventType{EventUndo, EventChordDeleted}) {
		t.Errorf("events = %v", got)
	}

	w.Stop()
	if err := <-done; err != nil {
		t.Errorf("Start() = %v, want nil after Stop", err)
	}
}
