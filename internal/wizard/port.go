package wizard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/stave/internal/midiio"
)

// PortModel is the bubbletea model for the MIDI port picker.
type PortModel struct {
	title    string
	ports    []midiio.Port
	current  string
	cursor   int
	selected *midiio.Port
	width    int
	height   int
}

// Styles for port picker
var (
	portTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	portItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	portSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	portCurrentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82"))

	portDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// NewPortModel creates a new port picker. current is the configured port
// name, if any; the cursor starts on it.
func NewPortModel(title string, ports []midiio.Port, current string) PortModel {
	m := PortModel{
		title:   title,
		ports:   ports,
		current: current,
		width:   80,
		height:  20,
	}
	if current != "" {
		if p, err := midiio.Match(ports, current); err == nil {
			for i := range ports {
				if ports[i].Number == p.Number {
					m.cursor = i
				}
			}
		}
	}
	return m
}

// Init initializes the model.
func (m PortModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m PortModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit

		case "enter", " ":
			if len(m.ports) > 0 && m.cursor < len(m.ports) {
				m.selected = &m.ports[m.cursor]
				return m, tea.Quit
			}

		case "up", "k", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j", "ctrl+n":
			if m.cursor < len(m.ports)-1 {
				m.cursor++
			}

		case "home", "g":
			m.cursor = 0

		case "end", "G":
			m.cursor = len(m.ports) - 1
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the model.
func (m PortModel) View() string {
	var b strings.Builder

	b.WriteString(portTitleStyle.Render("🎹 " + m.title))
	b.WriteString("\n\n")

	if len(m.ports) == 0 {
		b.WriteString(portDimStyle.Render("No MIDI ports found"))
		b.WriteString("\n\n")
		b.WriteString(portDimStyle.Render("Connect a device or start a virtual MIDI port."))
	} else {
		for i, port := range m.ports {
			var line strings.Builder

			if m.isCurrent(port) {
				line.WriteString(portCurrentStyle.Render("● "))
			} else {
				line.WriteString(portDimStyle.Render("○ "))
			}
			line.WriteString(port.Name)
			line.WriteString(portDimStyle.Render(" (" + string(port.Direction) + ")"))

			if i == m.cursor {
				b.WriteString(portSelectedStyle.Render("▸ " + line.String()))
			} else {
				b.WriteString(portItemStyle.Render("  " + line.String()))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(portDimStyle.Render("↑/↓ navigate • enter select • esc quit"))
	b.WriteString("\n")
	b.WriteString(portDimStyle.Render("● configured  ○ other"))

	return b.String()
}

func (m PortModel) isCurrent(p midiio.Port) bool {
	return m.current != "" && p.Name == m.current
}

// Selected returns the selected port, or nil if none.
func (m PortModel) Selected() *midiio.Port {
	return m.selected
}

// RunPortPicker runs the port picker and returns the selected port.
func RunPortPicker(title string, ports []midiio.Port, current string) (*midiio.Port, error) {
	model := NewPortModel(title, ports, current)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(PortModel).Selected(), nil
}
