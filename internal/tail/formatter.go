package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	showPlayhead  bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithPlayhead enables a line per chord as playback reaches it.
func WithPlayhead(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showPlayhead = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Skip reports whether the formatter drops e.
func (f *Formatter) Skip(e Event) bool {
	return e.Type == EventChordPlaying && !f.showPlayhead
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}

	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}

	parts = append(parts, fmt.Sprintf("Part %d:", e.Part+1))
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
		Part:      e.Part + 1,
	}

	if e.Chord != nil {
		data.Notes = chordNotes(e.Chord.Notes)
		data.Value = e.Chord.Value
		data.Duration = e.Chord.Duration
	}

	if e.Current != nil {
		data.State = e.Current.State
		data.Chords = len(e.Current.Chords)
		data.Instrument = e.Current.Instrument
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type       string
	Emoji      string
	Timestamp  time.Time
	Time       string
	Part       int
	Notes      string
	Value      string
	Duration   float64
	State      string
	Chords     int
	Instrument string
}

// chordNotes renders a chord's notes, or "rest" for none.
func chordNotes(notes []string) string {
	if len(notes) == 0 {
		return "rest"
	}
	return strings.Join(notes, " ")
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	switch e.Type {
	case EventChordRecorded:
		if e.Chord != nil {
			return fmt.Sprintf("Recorded %s (%s)", chordNotes(e.Chord.Notes), e.Chord.Value)
		}
		return "Chord recorded"

	case EventChordDeleted:
		return "Chord deleted"

	case EventChordEdited:
		if e.Chord != nil {
			return fmt.Sprintf("Edited %s (%s)", chordNotes(e.Chord.Notes), e.Chord.Value)
		}
		return "Chord edited"

	case EventChordPlaying:
		if e.Chord != nil {
			return fmt.Sprintf("%s (%s)", chordNotes(e.Chord.Notes), e.Chord.Value)
		}
		return "Chord playing"

	case EventPartAdded:
		return "Added"

	case EventPartRemoved:
		return "Removed"

	case EventPlay:
		if e.Current != nil && e.Current.Looping {
			return "Playing (looped)"
		}
		return "Playing"

	case EventPause:
		return "Paused"

	case EventStop:
		return "Stopped"

	case EventRecording:
		if e.Current != nil && e.Current.Recording {
			return "Recording"
		}
		return "Recording off"

	case EventLoop:
		if e.Current != nil && e.Current.Looping {
			return "Loop on"
		}
		return "Loop off"

	case EventUndo:
		return "Undo"

	default:
		return "Unknown event"
	}
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventChordRecorded:
		return "🎹"
	case EventChordDeleted:
		return "🗑️"
	case EventChordEdited:
		return "✏️"
	case EventChordPlaying:
		return "🎵"
	case EventPartAdded:
		return "➕"
	case EventPartRemoved:
		return "➖"
	case EventPlay:
		return "▶️"
	case EventPause:
		return "⏸️"
	case EventStop:
		return "⏹️"
	case EventRecording:
		return "⏺️"
	case EventLoop:
		return "🔁"
	case EventUndo:
		return "↩️"
	default:
		return "❓"
	}
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventChordRecorded:
		return "chord_recorded"
	case EventChordDeleted:
		return "chord_deleted"
	case EventChordEdited:
		return "chord_edited"
	case EventChordPlaying:
		return "chord_playing"
	case EventPartAdded:
		return "part_added"
	case EventPartRemoved:
		return "part_removed"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventStop:
		return "stop"
	case EventRecording:
		return "recording"
	case EventLoop:
		return "loop"
	case EventUndo:
		return "undo"
	default:
		return "unknown"
	}
}
