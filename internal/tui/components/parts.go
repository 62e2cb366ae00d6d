package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/stave/internal/sequencer"
	"github.com/tessro/stave/internal/tui/styles"
)

// Parts displays every part and its chords
type Parts struct {
	offset int
}

// NewParts creates a new Parts component
func NewParts() *Parts {
	return &Parts{}
}

// Render renders the parts panel
func (p *Parts) Render(view sequencer.SessionView, width, height int, focused bool) string {
	title := styles.PanelTitle("Parts", focused)

	var content string
	if len(view.Parts) == 0 {
		content = styles.Muted.Render("No parts")
	} else {
		content = p.renderParts(view, width-4, height-4)
	}

	panel := styles.Panel("", focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (p *Parts) renderParts(view sequencer.SessionView, width, maxLines int) string {
	// Keep the current part on screen
	if view.Current < p.offset {
		p.offset = view.Current
	}

	var blocks [][]string
	for i := range view.Parts {
		blocks = append(blocks, p.renderPart(view.Parts[i], width))
	}

	for {
		used := 0
		for i := p.offset; i <= view.Current && i < len(blocks); i++ {
			used += len(blocks[i])
		}
		if used <= maxLines || p.offset >= view.Current {
			break
		}
		p.offset++
	}

	lines := make([]string, 0, maxLines)
	for i := p.offset; i < len(blocks); i++ {
		if len(lines)+len(blocks[i]) > maxLines && len(lines) > 0 {
			more := styles.Dim.Render(fmt.Sprintf("  ... and %d more", len(blocks)-i))
			lines = append(lines, more)
			break
		}
		lines = append(lines, blocks[i]...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderPart returns a header line followed by wrapped chord lines
func (p *Parts) renderPart(part sequencer.PartView, width int) []string {
	selector := "  "
	name := fmt.Sprintf("Part %d", part.Index+1)
	if part.Current {
		selector = "▸ "
		name = styles.Highlight.Render(name)
	}

	flags := ""
	if part.Recording {
		flags += " " + styles.Recording.Render("● REC")
	}
	if part.Looping {
		flags += " " + styles.Playing.Render("⟳")
	}

	header := fmt.Sprintf("%s%s %s%s %s",
		selector,
		styles.StateIcon(part.State),
		name,
		flags,
		styles.Dim.Render(fmt.Sprintf("%s · %.2fs", part.Instrument, part.Duration)))

	lines := []string{header}
	if len(part.Chords) == 0 {
		return append(lines, "    "+styles.Muted.Render("empty"))
	}

	line := "   "
	for _, c := range part.Chords {
		token := " " + ChordToken(c)
		if lipgloss.Width(line)+lipgloss.Width(token) > width && line != "   " {
			lines = append(lines, line)
			line = "   "
		}
		line += token
	}
	return append(lines, line)
}

// ChordToken renders a chord as "C4·E4:4n", or "rest:8n".
func ChordToken(c sequencer.ChordView) string {
	notes := "rest"
	if len(c.Notes) > 0 {
		notes = strings.Join(c.Notes, "·")
	}
	token := notes + ":" + c.Value

	switch {
	case c.Playing:
		return styles.Playing.Bold(true).Render(token)
	case c.Selected:
		return styles.Selected.Render(token)
	case len(c.Notes) == 0:
		return styles.Dim.Render(token)
	}
	return token
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
