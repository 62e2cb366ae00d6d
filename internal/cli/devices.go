package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/tessro/stave/internal/config"
	staveerrors "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/instrument"
	"github.com/tessro/stave/internal/midiio"
	"github.com/tessro/stave/internal/wizard"
)

var devicesPick string

var devicesCmd = &cobra.Command{
	Use:     "devices",
	Aliases: []string{"ports"},
	Short:   "List MIDI input and output ports",
	Long: `Lists the MIDI ports available to stave.

With --pick input or --pick output, choose a port interactively and save it
as the default in the config file.`,
	RunE: runDevices,
}

func init() {
	devicesCmd.Flags().StringVar(&devicesPick, "pick", "", "choose the default port: input or output")
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	if devicesPick != "" {
		return runDevicesPick(cmd, devicesPick)
	}

	inputs, outputs := midiio.Inputs(), midiio.Outputs()
	out := cmd.OutOrStdout()
	if JSONOutput() {
		return printJSON(out, append(append([]midiio.Port{}, inputs...), outputs...))
	}
	if len(inputs) == 0 && len(outputs) == 0 {
		fmt.Fprintln(out, "No MIDI ports found")
		return nil
	}
	printPorts(out, "INPUTS", inputs, cfg.MIDI.Input)
	if len(outputs) > 0 && len(inputs) > 0 {
		fmt.Fprintln(out)
	}
	printPorts(out, "OUTPUTS", outputs, cfg.MIDI.Output)
	return nil
}

func printPorts(out io.Writer, title string, ports []midiio.Port, configured string) {
	if len(ports) == 0 {
		return
	}
	current, err := midiio.Match(ports, configured)
	if configured == "" || err != nil {
		current.Number = -1
	}
	fmt.Fprintf(out, "[%s]\n", title)
	for _, p := range ports {
		fmt.Fprintf(out, "  %s %s\n", StatusIcon(p.Number == current.Number), p.Name)
		if Verbose() {
			fmt.Fprintf(out, "      Number: %d\n", p.Number)
		}
	}
}

func runDevicesPick(cmd *cobra.Command, which string) error {
	var (
		ports   []midiio.Port
		key     string
		current string
	)
	switch strings.ToLower(which) {
	case "input", "in":
		ports, key, current = midiio.Inputs(), "midi.input", cfg.MIDI.Input
	case "output", "out":
		ports, key, current = midiio.Outputs(), "midi.output", cfg.MIDI.Output
	default:
		return fmt.Errorf("--pick must be input or output, got %q", which)
	}
	if len(ports) == 0 {
		return staveerrors.WithSuggestion(staveerrors.ErrNoMIDIPorts, "Connect a MIDI device and try again")
	}
	if !wizard.IsTerminal() {
		return fmt.Errorf("--pick needs an interactive terminal")
	}

	p, err := wizard.RunPortPicker("Select MIDI "+strings.TrimPrefix(key, "midi."), ports, current)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}
	path, err := ensureConfigFile()
	if err != nil {
		return err
	}
	if err := config.Set(path, key, p.Name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, p.Name)
	return nil
}

// instrumentChoices lists the instrument ids the UI cycles through: the
// built-in ones and one per MIDI output except the default output.
func instrumentChoices(s *session, output string) []string {
	ids := []string{instrument.DefaultID, instrument.LogID}
	for _, p := range midiio.Outputs() {
		if output != "" && p.Name == output {
			continue
		}
		ids = append(ids, "midi:"+p.Name)
	}
	for _, id := range s.registry.IDs() {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}
