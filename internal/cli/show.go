package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/stave/internal/instrument"
	"github.com/tessro/stave/internal/sequencer"
	"github.com/tessro/stave/internal/store"
	"github.com/tessro/stave/internal/transport"
)

var showChords bool

var showCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"status", "ls"},
	Short:   "Show the saved parts",
	Long:    `Lists the parts in the session file with their chords and durations.`,
	RunE:    runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showChords, "chords", false, "list every chord instead of a summary")
	rootCmd.AddCommand(showCmd)
}

// offlineEngine hydrates an engine from the session file without running a
// loop. Saves go through st; callers flush it.
func offlineEngine() (*sequencer.Engine, *store.FileStore, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	reg := instrument.NewRegistry(instrument.WithLogger(logger.Named("instrument")))
	e := sequencer.New(engineOptions(st, reg, transport.NewManual())...)
	return e, st, nil
}

type showResult struct {
	File     string                `json:"file"`
	Size     int64                 `json:"size"`
	Modified *time.Time            `json:"modified,omitempty"`
	Session  sequencer.SessionView `json:"session"`
}

func runShow(cmd *cobra.Command, args []string) error {
	e, st, err := offlineEngine()
	if err != nil {
		return err
	}

	result := showResult{File: st.Path(), Session: e.View()}
	if info, err := st.Stat(); err == nil {
		mod := info.ModTime()
		result.Size = info.Size()
		result.Modified = &mod
	}

	out := cmd.OutOrStdout()
	if JSONOutput() {
		return printJSON(out, result)
	}

	if result.Modified != nil {
		fmt.Fprintf(out, "Session: %s (%s, saved %s)\n\n", result.File,
			humanize.Bytes(uint64(result.Size)), humanize.Time(*result.Modified))
	} else {
		fmt.Fprintf(out, "Session: %s (not saved yet)\n\n", result.File)
	}

	table := NewTable(out, "PART", "REC", "LOOP", "INSTRUMENT", "CHORDS", "LENGTH", "CONTENT")
	for _, p := range result.Session.Parts {
		content := ChordLine(p.Chords)
		if !showChords {
			content = TruncateString(content, 48)
		}
		table.Row(
			strconv.Itoa(p.Index+1),
			StatusIcon(p.Recording),
			StatusIcon(p.Looping),
			p.Instrument,
			humanize.Comma(int64(len(p.Chords))),
			FormatDuration(p.Duration),
			content,
		)
	}
	table.Flush()
	return nil
}
