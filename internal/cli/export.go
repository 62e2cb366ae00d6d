package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessro/stave/internal/core"
	staveerrors "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/export"
	"github.com/tessro/stave/internal/notation"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the session as JSON, YAML or a MIDI file",
	Long: `Write the saved parts to a file, or to stdout when no file is given.

The format is taken from --format, or else from the file extension
(.json, .yaml/.yml, .mid/.midi). MIDI files get one track per part.`,
	Example: `  stave export song.mid
  stave export --format yaml > song.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "F", "", "output format: "+formatList())
	rootCmd.AddCommand(exportCmd)
}

func formatList() string {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// resolveFormat picks the format from the flag, the file name, or def.
func resolveFormat(flag, path string, def export.Format) (export.Format, error) {
	var (
		f   export.Format
		err error
	)
	switch {
	case flag != "":
		f, err = export.ParseFormat(flag)
	case path != "":
		f, err = export.FormatFromPath(path)
	default:
		return def, nil
	}
	if err != nil {
		return "", staveerrors.WithSuggestion(err, "Use one of: "+formatList())
	}
	return f, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	f, err := resolveFormat(exportFormat, path, export.JSON)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	data, err := st.Load()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		data = core.ToData([]*core.Part{core.NewPart()})
	}

	var out io.Writer = cmd.OutOrStdout()
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer func() { _ = file.Close() }()
		out = file
	}

	if err := export.Write(out, f, data, notation.Ladder{BPM: cfg.Tempo.BPM}); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	if path != "" && !JSONOutput() {
		fmt.Fprintf(os.Stderr, "Exported %d parts to %s\n", len(data), path)
	}
	return nil
}
