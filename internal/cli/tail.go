package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/stave/internal/tail"
)

// Flags shared by the commands that print engine events as they happen.
var (
	tailNoEmoji   bool
	tailTimestamp bool
	tailPlayhead  bool
	tailFormat    string
	tailInterval  time.Duration
)

func addTailFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	cmd.Flags().BoolVarP(&tailTimestamp, "timestamp", "t", false, "show timestamps")
	cmd.Flags().BoolVar(&tailPlayhead, "playhead", false, "print every chord as it plays")
	cmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom format template")
	cmd.Flags().DurationVar(&tailInterval, "interval", time.Second, "fallback poll interval")
}

func newFormatter() *tail.Formatter {
	return tail.NewFormatter(
		tail.WithEmoji(!tailNoEmoji),
		tail.WithTimestamp(tailTimestamp),
		tail.WithPlayhead(tailPlayhead),
		tail.WithTemplate(tailFormat),
	)
}

// interruptContext is canceled on Ctrl+C or SIGTERM.
func interruptContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// followEvents prints engine events to out until ctx is done or stop returns
// true for an event.
func followEvents(ctx context.Context, source tail.Source, out io.Writer, stop func(tail.Event) bool) error {
	formatter := newFormatter()
	watcher := tail.NewWatcher(source, tailInterval)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	for {
		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			if !formatter.Skip(event) {
				_, _ = fmt.Fprintln(out, formatter.Format(event))
			}
			if stop != nil && stop(event) {
				return nil
			}

		case err := <-errCh:
			if err == nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}
