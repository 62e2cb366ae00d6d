package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/stave/internal/sequencer"
	"github.com/tessro/stave/internal/tui/styles"
)

// Status displays the current part and its playhead
type Status struct{}

// NewStatus creates a new Status component
func NewStatus() *Status {
	return &Status{}
}

// Render renders the status panel
func (s *Status) Render(view sequencer.SessionView, width int) string {
	if len(view.Parts) == 0 {
		return styles.Panel("", true).Width(width).Render(styles.Muted.Render("No parts"))
	}
	part := view.CurrentPart()

	icon := styles.StateIcon(part.State)
	title := styles.Title.Render(fmt.Sprintf("Part %d of %d", part.Index+1, len(view.Parts)))

	var flags []string
	if part.Recording {
		flags = append(flags, styles.Recording.Render("● recording"))
	} else {
		flags = append(flags, styles.Dim.Render("○ not recording"))
	}
	if part.Looping {
		flags = append(flags, styles.Playing.Render("⟳ loop"))
	}
	flags = append(flags, styles.Muted.Render("instrument "+part.Instrument))

	// Playhead
	barWidth := width - 20
	if barWidth < 10 {
		barWidth = 10
	}
	elapsed := Playhead(part)
	percent := 0.0
	if part.Duration > 0 {
		percent = elapsed / part.Duration * 100
	}
	progress := fmt.Sprintf("%5.2fs %s %5.2fs",
		elapsed, styles.ProgressBar(percent, barWidth), part.Duration)

	line := icon + " " + title
	for _, f := range flags {
		line += "  " + f
	}

	return styles.Panel("", true).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, line, progress))
}

// Playhead returns the start offset of the chord being played, in seconds.
func Playhead(part sequencer.PartView) float64 {
	i, ok := part.Playing.Get()
	if !ok {
		return 0
	}
	var offset float64
	for j := 0; j < i && j < len(part.Chords); j++ {
		offset += part.Chords[j].Duration
	}
	return offset
}
