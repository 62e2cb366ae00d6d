package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tessro/stave/internal/config"
	staveerrors "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/midiio"
	"github.com/tessro/stave/internal/wizard"
)

var configInitDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing stave configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the configuration in effect, including environment overrides.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a new configuration file. In a terminal you are asked for the
tempo, keyboard octave and MIDI ports; otherwise defaults are written.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  ` + strings.Join(config.Keys(), "\n  ") + `

Examples:
  stave config set tempo.bpm 96
  stave config set midi.output "IAC Driver Bus 1"`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitDefaults, "defaults", false, "write defaults without asking")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

// ensureConfigFile writes the loaded config to configPath if no file exists.
func ensureConfigFile() (string, error) {
	path := configPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.Write(path, cfg); err != nil {
			return "", err
		}
	}
	return path, nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return printJSON(cmd.OutOrStdout(), cfg)
	}

	encoder := toml.NewEncoder(cmd.OutOrStdout())
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return staveerrors.WithSuggestion(
			fmt.Errorf("%w: %s", staveerrors.ErrConfigNotFound, path),
			"Run 'stave config init' first")
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, path)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return err
	}
	if _, err := config.LoadFrom(path); err != nil {
		return staveerrors.WithSuggestion(err, "Run 'stave config edit' again to fix the file")
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	newCfg := config.Default()
	if !configInitDefaults && wizard.IsTerminal() {
		if err := runConfigForm(newCfg); err != nil {
			return err
		}
	}
	if err := newCfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", staveerrors.ErrInvalidConfig, err)
	}

	if err := config.Write(path, newCfg); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(cmd.OutOrStdout(), map[string]string{
			"status": "created",
			"path":   path,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file: %s\n", path)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Run 'stave devices' to check your MIDI ports")
	fmt.Fprintln(out, "  2. Run 'stave ui' and press 'i' to start recording")
	return nil
}

func portOptions(ports []midiio.Port) []huh.Option[string] {
	options := []huh.Option[string]{huh.NewOption("None", "")}
	for _, p := range ports {
		options = append(options, huh.NewOption(p.Name, p.Name))
	}
	return options
}

func runConfigForm(c *config.Config) error {
	bpm := strconv.FormatFloat(c.Tempo.BPM, 'f', -1, 64)
	octave := c.Keyboard.Octave

	octaves := make([]huh.Option[int], 0, 8)
	for o := 0; o <= 7; o++ {
		octaves = append(octaves, huh.NewOption(fmt.Sprintf("%d (C%d to B%d)", o, o, o+2), o))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Tempo").
				Description("Beats per minute used for note values and MIDI export").
				Value(&bpm).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(s, 64)
					if err != nil || v <= 0 || v > 999 {
						return errors.New("enter a tempo between 1 and 999")
					}
					return nil
				}),
			huh.NewSelect[int]().
				Title("Keyboard octave").
				Description("Octave of the bottom keyboard row").
				Options(octaves...).
				Value(&octave),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("MIDI input").
				Options(portOptions(midiio.Inputs())...).
				Value(&c.MIDI.Input),
			huh.NewSelect[string]().
				Title("MIDI output").
				Options(portOptions(midiio.Outputs())...).
				Value(&c.MIDI.Output),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	c.Tempo.BPM, _ = strconv.ParseFloat(bpm, 64)
	c.Keyboard.Octave = octave
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	path := configPath()
	if err := config.Set(path, key, value); err != nil {
		if errors.Is(err, staveerrors.ErrConfigNotFound) {
			return staveerrors.WithSuggestion(err, "Run 'stave config init' first")
		}
		return err
	}

	if JSONOutput() {
		return printJSON(cmd.OutOrStdout(), map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}
