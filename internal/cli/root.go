package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tessro/stave/internal/config"
	staveerrors "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/logging"
)

var (
	cfgFile     string
	sessionFile string
	jsonOut     bool
	verbose     bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "stave",
	Short: "Record and replay chords from a keyboard",
	Long: `Stave is a live-input chord sequencer. Play notes on the computer keyboard
or a MIDI controller, record them into parts, edit the chords and play them
back through a MIDI output.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.staverc)")
	rootCmd.PersistentFlags().StringVarP(&sessionFile, "session", "s", "", "session file (default: <config dir>/stave/parts.json)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig(cmd *cobra.Command) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
		if errors.Is(err, staveerrors.ErrConfigNotFound) && cmd == configInitCmd {
			cfg, err = config.Default(), nil
		}
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if sessionFile != "" {
		cfg.Session.File = sessionFile
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return staveerrors.WithSuggestion(
			fmt.Errorf("%w: %v", staveerrors.ErrInvalidConfig, err),
			"Fix the values above or run 'stave config show' to inspect them")
	}

	logger, err = logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, staveerrors.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
