package tail

import (
	"context"
	"time"

	"github.com/tessro/stave/internal/sequencer"
)

// EventType represents the type of session event.
type EventType int

const (
	EventChordRecorded EventType = iota
	EventChordDeleted
	EventChordEdited
	EventChordPlaying
	EventPartAdded
	EventPartRemoved
	EventPlay
	EventPause
	EventStop
	EventRecording
	EventLoop
	EventUndo
)

// Event represents a session change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	// Part is the index of the part in the session the event was read from.
	Part     int
	Previous *sequencer.PartView
	Current  *sequencer.PartView
	// Chord is the chord the event is about, when there is one.
	Chord *sequencer.ChordView
}

// Source is what a Watcher follows. *sequencer.Loop satisfies it.
type Source interface {
	View(ctx context.Context) (sequencer.SessionView, error)
	Subscribe(buf int) (<-chan sequencer.Change, func())
}

// Watcher follows engine changes and emits events.
type Watcher struct {
	source   Source
	interval time.Duration
	events   chan Event
	done     chan struct{}
}

// NewWatcher creates a new session watcher. Besides reacting to change
// notifications it resyncs every interval, in case one was dropped.
func NewWatcher(source Source, interval time.Duration) *Watcher {
	if interval == 0 {
		interval = time.Second
	}
	return &Watcher{
		source:   source,
		interval: interval,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
}

// Events returns the channel of session events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins following the session.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.events)

	changes, unsubscribe := w.source.Subscribe(64)
	defer unsubscribe()

	var prev *sequencer.SessionView
	if v, err := w.source.View(ctx); err == nil {
		prev = &v
	}

	for {
		var undone bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			undone = c.Kind == sequencer.Undone
		case <-ticker.C:
		}

		curr, err := w.source.View(ctx)
		if err != nil {
			continue
		}

		events := diffViews(prev, &curr)
		if undone {
			events = append([]Event{{Type: EventUndo, Timestamp: time.Now(), Part: curr.Current}}, events...)
		}
		for _, e := range events {
			select {
			case w.events <- e:
			default:
				// Drop event if channel is full
			}
		}

		prev = &curr
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// diffViews compares two session views and returns detected events.
// Parts are matched by ID so reordering after a removal is not a change.
func diffViews(prev, curr *sequencer.SessionView) []Event {
	if curr == nil {
		return nil
	}

	now := time.Now()
	var events []Event

	// First view - nothing to compare against
	if prev == nil {
		return nil
	}

	before := make(map[string]int, len(prev.Parts))
	for i, p := range prev.Parts {
		before[p.ID] = i
	}
	after := make(map[string]bool, len(curr.Parts))

	for i := range curr.Parts {
		c := &curr.Parts[i]
		after[c.ID] = true

		j, ok := before[c.ID]
		if !ok {
			events = append(events, Event{
				Type:      EventPartAdded,
				Timestamp: now,
				Part:      i,
				Current:   c,
			})
			continue
		}
		p := &prev.Parts[j]
		events = append(events, diffPart(now, i, p, c)...)
	}

	for i := range prev.Parts {
		p := &prev.Parts[i]
		if !after[p.ID] {
			events = append(events, Event{
				Type:      EventPartRemoved,
				Timestamp: now,
				Part:      i,
				Previous:  p,
			})
		}
	}

	return events
}

// diffPart compares two views of the same part.
func diffPart(now time.Time, i int, prev, curr *sequencer.PartView) []Event {
	var events []Event
	add := func(t EventType, chord *sequencer.ChordView) {
		events = append(events, Event{
			Type:      t,
			Timestamp: now,
			Part:      i,
			Previous:  prev,
			Current:   curr,
			Chord:     chord,
		})
	}

	// Chord count
	switch {
	case len(curr.Chords) > len(prev.Chords):
		for k := len(prev.Chords); k < len(curr.Chords); k++ {
			add(EventChordRecorded, &curr.Chords[k])
		}
	case len(curr.Chords) < len(prev.Chords):
		add(EventChordDeleted, nil)
	default:
		for k := range curr.Chords {
			if chordEdited(&prev.Chords[k], &curr.Chords[k]) {
				add(EventChordEdited, &curr.Chords[k])
			}
		}
	}

	// Transport state
	if prev.State != curr.State {
		switch curr.State {
		case "playing":
			add(EventPlay, nil)
		case "paused":
			add(EventPause, nil)
		case "stopped":
			add(EventStop, nil)
		}
	}

	// Playhead
	if k, ok := curr.Playing.Get(); ok && !prev.Playing.Is(k) && k < len(curr.Chords) {
		add(EventChordPlaying, &curr.Chords[k])
	}

	if prev.Recording != curr.Recording {
		add(EventRecording, nil)
	}
	if prev.Looping != curr.Looping {
		add(EventLoop, nil)
	}

	return events
}

// chordEdited returns true if a chord's notes or duration changed.
func chordEdited(prev, curr *sequencer.ChordView) bool {
	if prev.Duration != curr.Duration || len(prev.Notes) != len(curr.Notes) {
		return true
	}
	for i := range prev.Notes {
		if prev.Notes[i] != curr.Notes[i] {
			return true
		}
	}
	return false
}
