package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tessro/stave/internal/wizard"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset the session to one empty part",
	Long:  `Removes every part from the session file. This cannot be undone.`,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearYes && wizard.IsTerminal() {
		confirmed := false
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Delete every part?").
					Affirmative("Clear").
					Negative("Cancel").
					Value(&confirmed),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("confirmation cancelled: %w", err)
		}
		if !confirmed {
			return nil
		}
	}

	e, st, err := offlineEngine()
	if err != nil {
		return err
	}
	e.Clear()
	if err := st.Flush(); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(cmd.OutOrStdout(), map[string]string{"status": "cleared", "path": st.Path()})
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Session cleared")
	return nil
}
