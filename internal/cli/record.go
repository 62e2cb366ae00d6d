package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	staveerrors "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/midiio"
	"github.com/tessro/stave/internal/sequencer"
	"github.com/tessro/stave/internal/wizard"
)

var (
	recordPart   int
	recordNew    bool
	recordInput  string
	recordOutput string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record chords from a MIDI keyboard",
	Long: `Arm a part and record what you play on a MIDI input until Ctrl+C.

Notes held together become one chord. Gaps between chords are kept as rests.
Recorded chords are printed as they are captured and saved to the session.`,
	Example: `  stave record
  stave record --new --input "KeyStep"
  stave record --part 2 --output "IAC Driver Bus 1"`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().IntVarP(&recordPart, "part", "p", 0, "part number to record into (default: current part)")
	recordCmd.Flags().BoolVarP(&recordNew, "new", "n", false, "record into a new part")
	recordCmd.Flags().StringVarP(&recordInput, "input", "i", "", "MIDI input port")
	recordCmd.Flags().StringVarP(&recordOutput, "output", "o", "", "MIDI output port to echo notes to")
	addTailFlags(recordCmd)
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptContext(cmd)
	defer stop()

	name, err := wizard.NewInteractive().PromptPort("Select MIDI input", midiio.Inputs(), firstNonEmpty(recordInput, cfg.MIDI.Input))
	if err != nil {
		return err
	}

	s, err := startSession(ctx, firstNonEmpty(recordOutput, cfg.MIDI.Output))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	port, err := s.listenMIDI(name)
	if err != nil {
		if errors.Is(err, staveerrors.ErrNoMIDIPorts) || errors.Is(err, staveerrors.ErrPortNotFound) {
			return staveerrors.WithSuggestion(err, "Connect a MIDI keyboard and run 'stave devices' to list ports")
		}
		return err
	}

	var part int
	var armErr error
	err = s.loop.Do(ctx, func(e *sequencer.Engine) {
		switch {
		case recordNew:
			part = e.AddPart()
		case recordPart > 0:
			part = recordPart - 1
		default:
			part = e.Session().Current
		}
		if p := e.Session().Part(part); p == nil || !p.Recording {
			armErr = e.ToggleRecord(part)
		}
	})
	if err != nil {
		return err
	}
	if armErr != nil {
		return staveerrors.WithSuggestion(
			fmt.Errorf("cannot record into part %d: %w", part+1, armErr),
			"Run 'stave show' to list parts, or use --new")
	}

	if !JSONOutput() {
		fmt.Fprintf(os.Stderr, "Recording into part %d from %s. Press Ctrl+C to stop.\n", part+1, port)
	}
	return followEvents(ctx, s.loop, cmd.OutOrStdout(), nil)
}
