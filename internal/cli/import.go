package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/stave/internal/core"
	staveerrors "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/export"
	"github.com/tessro/stave/internal/notation"
)

var (
	importFormat string
	importAppend bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Load parts from JSON, YAML or MIDI files",
	Long: `Replace the session with the parts read from one or more files.

MIDI files become one part per track, with note onsets grouped into chords and
durations snapped to the nearest note value. Files that fail to load are
reported and skipped.`,
	Example: `  stave import song.yaml
  stave import --append bass.mid chords.mid`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFormat, "format", "F", "", "input format (default: from file extension)")
	importCmd.Flags().BoolVarP(&importAppend, "append", "a", false, "add the parts after the existing ones")
	rootCmd.AddCommand(importCmd)
}

func readParts(path string, ladder notation.Ladder) ([]core.PartData, error) {
	f, err := resolveFormat(importFormat, path, export.JSON)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return export.Read(file, f, ladder)
}

func runImport(cmd *cobra.Command, args []string) error {
	ladder := notation.Ladder{BPM: cfg.Tempo.BPM}

	var result staveerrors.PartialResult[[]core.PartData]
	for _, path := range args {
		data, err := readParts(path, ladder)
		if err != nil {
			result.AddError(fmt.Errorf("%s: %w", path, err))
			continue
		}
		result.Data = append(result.Data, data...)
	}
	if len(result.Data) == 0 {
		if result.HasErrors() {
			return errors.New(result.ErrorSummary())
		}
		return fmt.Errorf("no parts found in %d files", len(args))
	}

	e, st, err := offlineEngine()
	if err != nil {
		return err
	}
	data := result.Data
	if importAppend {
		data = append(core.ToData(e.Session().Parts), data...)
	}
	if err := e.Replace(data); err != nil {
		return fmt.Errorf("failed to import: %w", err)
	}
	if err := st.Flush(); err != nil {
		return err
	}

	if JSONOutput() {
		errs := make([]string, len(result.Errors))
		for i, err := range result.Errors {
			errs[i] = err.Error()
		}
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"parts":  len(e.Session().Parts),
			"added":  len(result.Data),
			"errors": errs,
		})
	}
	if result.HasErrors() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", result.ErrorSummary())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d parts into %s\n", len(result.Data), st.Path())
	return nil
}
