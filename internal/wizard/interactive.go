package wizard

import (
	"os"

	"github.com/tessro/stave/internal/midiio"
	"golang.org/x/term"
)

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled bool
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{
		enabled: true,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// PromptPort launches the port picker if a choice is needed and interactive
// mode is available. It returns the chosen port name, or name unchanged.
func (i *Interactive) PromptPort(title string, ports []midiio.Port, name string) (string, error) {
	if !NeedsPort(name, ports) || !i.CanInteract() {
		return name, nil
	}
	p, err := RunPortPicker(title, ports, name)
	if err != nil || p == nil {
		return name, err
	}
	return p.Name, nil
}

// NeedsPort returns true if the user has to choose between several ports.
func NeedsPort(name string, ports []midiio.Port) bool {
	if name != "" {
		return false
	}
	return len(ports) > 1
}
