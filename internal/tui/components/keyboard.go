package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/keymap"
	"github.com/tessro/stave/internal/tui/styles"
)

// Keyboard shows which computer keys play which notes
type Keyboard struct{}

// NewKeyboard creates a new Keyboard component
func NewKeyboard() *Keyboard {
	return &Keyboard{}
}

// Render renders the keyboard panel. Held pitches are highlighted.
func (k *Keyboard) Render(km keymap.Keymap, held []string, width int) string {
	title := styles.PanelTitle(fmt.Sprintf("Keyboard · octave %d", km.Base), false)

	down := make(map[string]bool, len(held))
	for _, h := range held {
		down[h] = true
	}

	// Highest row first, the way the keys sit on the keyboard
	lines := []string{title}
	for row := len(km.Rows) - 1; row >= 0; row-- {
		lines = append(lines, k.renderRow(km, row, down))
	}

	return styles.Panel("", false).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (k *Keyboard) renderRow(km keymap.Keymap, row int, down map[string]bool) string {
	line := ""
	for _, r := range km.Rows[row] {
		p, ok := km.Resolve(string(r))
		if !ok {
			continue
		}
		cell := fmt.Sprintf(" %c %-3s", r, p.String())
		sharp := core.Pitch{Letter: p.Letter, Sharp: true, Octave: p.Octave}
		if down[p.String()] || (p.Letter != 'E' && p.Letter != 'B' && down[sharp.String()]) {
			cell = styles.Held.Render(cell)
		} else {
			cell = styles.Muted.Render(cell)
		}
		line += cell
	}
	return line
}
