package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/stave/internal/core"
	staveerrors "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/sequencer"
)

var (
	playParts  []int
	playLoop   bool
	playOutput string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play parts through an instrument",
	Long: `Play the saved parts without the interactive UI.

By default every part plays at once. Playback ends when the last part
finishes, or on Ctrl+C when looping.`,
	Example: `  stave play
  stave play --part 1 --part 3
  stave play --loop --output "IAC Driver Bus 1"`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntSliceVarP(&playParts, "part", "p", nil, "part numbers to play (default: all)")
	playCmd.Flags().BoolVarP(&playLoop, "loop", "l", false, "loop the parts until interrupted")
	playCmd.Flags().StringVarP(&playOutput, "output", "o", "", "MIDI output port")
	addTailFlags(playCmd)
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptContext(cmd)
	defer stop()

	output := firstNonEmpty(playOutput, cfg.MIDI.Output)
	s, err := startSession(ctx, output)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if output == "" && !JSONOutput() {
		fmt.Fprintln(os.Stderr, "No MIDI output configured; playing silently. Use --output or 'stave config set midi.output'.")
	}

	changes, unsubscribe := s.loop.Subscribe(64)
	defer unsubscribe()

	var playErr error
	err = s.loop.Do(ctx, func(e *sequencer.Engine) {
		targets := playParts
		if len(targets) == 0 {
			for i := range e.Session().Parts {
				targets = append(targets, i+1)
			}
		}
		for _, n := range targets {
			i := n - 1
			if p := e.Session().Part(i); p != nil && p.Looping != playLoop {
				_ = e.ToggleLoop(i)
			}
			if err := e.Play(i); err != nil {
				playErr = fmt.Errorf("part %d: %w", n, err)
				return
			}
		}
	})
	if err != nil {
		return err
	}
	if playErr != nil {
		return staveerrors.WithSuggestion(playErr, "Run 'stave show' to list parts")
	}

	view, err := s.loop.View(ctx)
	if err != nil {
		return err
	}
	if !anyPlaying(view) {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to play")
		return nil
	}

	followCtx, cancelFollow := context.WithCancel(ctx)
	defer cancelFollow()
	errCh := make(chan error, 1)
	go func() {
		errCh <- followEvents(followCtx, s.loop, cmd.OutOrStdout(), nil)
	}()

	ticker := time.NewTicker(tailInterval)
	defer ticker.Stop()
	for {
		select {
		case c, ok := <-changes:
			if !ok {
				cancelFollow()
				return <-errCh
			}
			if c.Kind != sequencer.PlaybackChanged {
				continue
			}
		case <-ticker.C:
		case err := <-errCh:
			return err
		}
		v, err := s.loop.View(ctx)
		if err != nil {
			continue
		}
		if !anyPlaying(v) {
			cancelFollow()
			return <-errCh
		}
	}
}

func anyPlaying(v sequencer.SessionView) bool {
	for _, p := range v.Parts {
		if p.State == core.Playing.String() {
			return true
		}
	}
	return false
}
