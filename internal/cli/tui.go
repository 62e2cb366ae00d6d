package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/stave/internal/tui"
)

var (
	tuiRefresh int
	tuiInput   string
	tuiOutput  string
)

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive sequencer",
	Long: `Launch the interactive terminal sequencer.

Play notes with the keyboard rows zxcvbnm, asdfghj and qwertyu (shift for
sharps). Arm a part with 'i' to record what you play.

Keyboard shortcuts:
  Space         Play/pause part
  .             Stop part
  p             Play or stop all parts
  l             Toggle loop
  i             Toggle recording
  +/-           Add/remove part
  Tab           Next part
  [ ]           Select previous/next chord
  ↑/↓           Transpose selection
  ←/→           Shorten/lengthen selection
  Backspace     Delete selection
  Ctrl+Z        Undo
  < >           Octave down/up
  k             Next instrument
  ?             Help
  Ctrl+C        Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "refresh interval in milliseconds (default from config)")
	tuiCmd.Flags().StringVarP(&tuiInput, "input", "i", "", "MIDI input port to play from")
	tuiCmd.Flags().StringVarP(&tuiOutput, "output", "o", "", "MIDI output port to play through")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptContext(cmd)
	defer stop()

	s, err := startSession(ctx, firstNonEmpty(tuiOutput, cfg.MIDI.Output))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if input := firstNonEmpty(tuiInput, cfg.MIDI.Input); input != "" {
		if _, err := s.listenMIDI(input); err != nil {
			return err
		}
	}

	refresh := tuiRefresh
	if refresh <= 0 {
		refresh = cfg.TUI.RefreshInterval
	}
	return tui.Run(ctx, s.loop, cfg.TUI.Theme,
		tui.WithRefreshRate(time.Duration(refresh)*time.Millisecond),
		tui.WithInstruments(instrumentChoices(s, firstNonEmpty(tuiOutput, cfg.MIDI.Output))),
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
