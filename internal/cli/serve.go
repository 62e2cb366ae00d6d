package cli

import (
	"fmt"
	"io"
	"net"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tessro/stave/internal/browser"
	"github.com/tessro/stave/internal/server"
)

var (
	serveAddr   string
	serveInput  string
	serveOutput string
	serveQuiet  bool
	serveOpen   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Control the sequencer over HTTP",
	Long: `Run the sequencer headless behind an HTTP API.

Every request goes through the same engine as the keyboard, so a browser
page or script can press keys, edit chords and drive playback. Session
changes are printed as they happen unless --quiet is set.`,
	Example: `  stave serve
  stave serve --addr :8080 --input "KeyStep"
  curl -X POST localhost:7878/keys/C4/down`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from config)")
	serveCmd.Flags().StringVarP(&serveInput, "input", "i", "", "MIDI input port to play from")
	serveCmd.Flags().StringVarP(&serveOutput, "output", "o", "", "MIDI output port")
	serveCmd.Flags().BoolVarP(&serveQuiet, "quiet", "q", false, "do not print session events")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the session JSON in a browser")
	addTailFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptContext(cmd)
	defer stop()

	s, err := startSession(ctx, firstNonEmpty(serveOutput, cfg.MIDI.Output))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if input := firstNonEmpty(serveInput, cfg.MIDI.Input); input != "" {
		if _, err := s.listenMIDI(input); err != nil {
			return err
		}
	}

	srv := server.New(s.loop,
		server.WithLogger(logger),
		server.WithOrigins(cfg.Server.Origins),
	)
	addr := firstNonEmpty(serveAddr, cfg.Server.Addr)

	var events io.Writer = cmd.OutOrStdout()
	if serveQuiet || JSONOutput() {
		events = io.Discard
	}
	go func() { _ = followEvents(ctx, s.loop, events, nil) }()

	fmt.Fprintf(os.Stderr, "Listening on http://%s\n", addr)
	if serveOpen {
		if err := browser.Open("http://" + browserHost(addr) + "/parts"); err != nil {
			logger.Warn("failed to open browser", zap.Error(err))
		}
	}
	return srv.ListenAndServe(ctx, addr)
}

// browserHost turns a listen address like ":7878" into one a browser can use.
func browserHost(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
