package cli

import (
	"fmt"
	"time"

	"github.com/dshills/devboot/internal/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the record of past setup and scaffold runs",
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal entries, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, a, err := loadApp(cmd)
		if err != nil {
			fail(cmd, err)
			return nil
		}
		out := cmd.OutOrStdout()
		if !a.journal.Enabled() {
			fmt.Fprintln(out, "Journal is disabled.")
			return nil
		}
		entries, err := a.journal.List()
		if err != nil {
			fail(cmd, err)
			return nil
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No journal entries.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s  %-10s %s\n", e.CreatedAt.Local().Format(time.DateTime), e.Kind, describe(e))
		}
		return nil
	},
}

var journalClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all journal entries (backup files are kept)",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, a, err := loadApp(cmd)
		if err != nil {
			fail(cmd, err)
			return nil
		}
		n, err := a.journal.Clear()
		if err != nil {
			fail(cmd, fmt.Errorf("clearing journal: %w", err))
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d journal entries.\n", n)
		return nil
	},
}

func describe(e journal.Entry) string {
	switch {
	case e.Patch != nil:
		return fmt.Sprintf("%s (%d lines changed, backup %s)", e.Patch.Path, e.Patch.Changed, e.Patch.BackupPath)
	case e.Plan != nil:
		return fmt.Sprintf("installed %v, updated %v", e.Plan.ToInstall, e.Plan.ToUpdate)
	case e.Project != "":
		return fmt.Sprintf("%s -> %s", e.Project, e.Target)
	default:
		return ""
	}
}

func init() {
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalClearCmd)
}
