package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tessro/stave/internal/sequencer"
	"github.com/tessro/stave/internal/tail"
	"github.com/tessro/stave/internal/transport"
)

func newTestModel(t *testing.T, opts ...Option) Model {
	t.Helper()
	e := sequencer.New(sequencer.WithTransport(transport.NewManual()))
	loop := sequencer.NewLoop(64)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go loop.Run(ctx, e)

	opts = append([]Option{WithHold(time.Millisecond, time.Millisecond)}, opts...)
	m := NewModel(NewApp(loop, nil, opts...))
	return run(t, m, m.fetchView())
}

// run executes cmd and everything it leads to, feeding messages back
// through Update.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("command chain did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if msg == nil {
			continue
		}
		next, more := m.Update(msg)
		m = next.(Model)
		queue = append(queue, more)
	}
	return m
}

func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return run(t, next.(Model), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRecordFromKeys(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, runes("i"))
	if !m.view.CurrentPart().Recording {
		t.Fatal("i should toggle recording")
	}

	m = press(t, m, runes("z"))
	chords := m.view.CurrentPart().Chords
	if len(chords) != 1 {
		t.Fatalf("chords = %d, want 1", len(chords))
	}
	if got := strings.Join(chords[0].Notes, " "); got != "C4" {
		t.Errorf("notes = %q, want C4", got)
	}
	if len(m.held) != 0 {
		t.Errorf("held = %v after release", m.held)
	}

	m = press(t, m, runes("A"))
	chords = m.view.CurrentPart().Chords
	last := chords[len(chords)-1]
	if got := strings.Join(last.Notes, " "); got != "C#5" {
		t.Errorf("shifted a = %q, want C#5", got)
	}
}

func TestRepeatedPressIsOneNote(t *testing.T) {
	m := newTestModel(t, WithHold(time.Hour, time.Hour))
	m = press(t, m, runes("i"))

	next, _ := m.Update(runes("x"))
	m = next.(Model)
	first := m.held["x"].seq
	next, _ = m.Update(runes("x"))
	m = next.(Model)

	// The first press's timer is stale after the repeat.
	next, cmd := m.Update(releaseMsg{key: "x", seq: first})
	m = next.(Model)
	if cmd != nil {
		t.Error("stale release should do nothing")
	}
	if _, ok := m.held["x"]; !ok {
		t.Fatal("x should still be held")
	}

	// Run the key down that the first press queued, then the live release.
	m = run(t, m, m.do(func(e *sequencer.Engine) error {
		e.KeyDown(m.held["x"].pitch)
		return nil
	}))
	m = run(t, m, func() tea.Msg { return releaseMsg{key: "x", seq: m.held["x"].seq} })
	if n := len(m.view.CurrentPart().Chords); n != 1 {
		t.Errorf("chords = %d, want 1", n)
	}
}

func TestEditKeys(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("i"))
	m = press(t, m, runes("z"))
	m = press(t, m, runes("]"))

	if !m.view.CurrentPart().Chords[0].Selected {
		t.Fatal("] should select the first chord")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if got := m.view.CurrentPart().Chords[0].Notes[0]; got != "C#4" {
		t.Errorf("after up = %s, want C#4", got)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	if got := m.view.CurrentPart().Chords[0].Notes[0]; got != "C4" {
		t.Errorf("after undo = %s, want C4", got)
	}

	m = press(t, m, runes("]"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if n := len(m.view.CurrentPart().Chords); n != 0 {
		t.Errorf("chords = %d after delete", n)
	}
}

func TestPartKeys(t *testing.T) {
	m := newTestModel(t, WithInstruments([]string{"default", "log"}))

	m = press(t, m, runes("+"))
	if len(m.view.Parts) != 2 || m.view.Current != 1 {
		t.Fatalf("after add: parts = %d, current = %d", len(m.view.Parts), m.view.Current)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.view.Current != 0 {
		t.Errorf("tab should wrap to part 0, got %d", m.view.Current)
	}

	m = press(t, m, runes("k"))
	if got := m.view.CurrentPart().Instrument; got != "log" {
		t.Errorf("instrument = %q, want log", got)
	}

	m = press(t, m, runes(">"))
	if m.view.Octave != 5 {
		t.Errorf("octave = %d, want 5", m.view.Octave)
	}

	m = press(t, m, runes("-"))
	if len(m.view.Parts) != 1 {
		t.Errorf("parts = %d after remove", len(m.view.Parts))
	}
}

func TestPlaybackKeys(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("i"))
	m = press(t, m, runes("z"))

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if got := m.view.CurrentPart().State; got != "playing" {
		t.Errorf("state = %s, want playing", got)
	}
	m = press(t, m, runes("."))
	if got := m.view.CurrentPart().State; got != "stopped" {
		t.Errorf("state = %s, want stopped", got)
	}
	m = press(t, m, runes("l"))
	if !m.view.CurrentPart().Looping {
		t.Error("l should toggle looping")
	}
}

func TestActivityFeed(t *testing.T) {
	m := newTestModel(t)
	c := sequencer.ChordView{Notes: []string{"C4"}, Value: "4n"}
	next, _ := m.Update(eventMsg(tail.Event{Type: tail.EventChordRecorded, Chord: &c, Timestamp: time.Now()}))
	m = next.(Model)
	next, _ = m.Update(eventMsg(tail.Event{Type: tail.EventChordPlaying, Chord: &c}))
	m = next.(Model)

	if len(m.activity) != 1 {
		t.Fatalf("activity = %d entries, want playhead skipped", len(m.activity))
	}
	if m.activity[0].Line != "Part 1: Recorded C4 (4n)" {
		t.Errorf("line = %q", m.activity[0].Line)
	}
}

func TestViewAndHelp(t *testing.T) {
	m := newTestModel(t)
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() before size = %q", got)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(Model)
	if out := m.View(); !strings.Contains(out, "Part 1") || !strings.Contains(out, "Keyboard") {
		t.Errorf("View() missing panels:\n%s", out)
	}

	m = press(t, m, runes("?"))
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("? should open help")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.showHelp {
		t.Error("esc should close help")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not return tea.Quit")
	}
}
