package cli

import (
	"fmt"

	"github.com/dshills/devboot/internal/inipatch"
	"github.com/spf13/cobra"
)

var flagBackup string

var iniCmd = &cobra.Command{
	Use:   "ini",
	Short: "Inspect or roll back the php.ini patch",
}

var iniCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Preview the rule set against a file and flag rules that are not idempotent",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, a, err := loadApp(cmd)
		if err != nil {
			fail(cmd, err)
			return nil
		}
		path := a.profile.INI.Path
		if len(args) == 1 {
			path = args[0]
		}
		rules := a.profile.INI.Rules
		out := cmd.OutOrStdout()

		lines, err := inipatch.ReadLines(path)
		if err != nil {
			fail(cmd, err)
			return nil
		}
		changed := inipatch.Apply(lines, rules)
		n := 0
		for i := range lines {
			if lines[i] != changed[i] {
				n++
				fmt.Fprintf(out, "%5d  - %s\n       + %s\n", i+1, lines[i], changed[i])
			}
		}
		fmt.Fprintf(out, "%s: %d of %d lines would change\n", path, n, len(lines))

		bad := inipatch.NonIdempotent(rules, lines)
		for _, i := range bad {
			fmt.Fprintf(out, "rule %d (%s) rewrites its own output\n", i+1, rules[i])
		}
		if len(bad) > 0 {
			fail(cmd, fmt.Errorf("%d rule(s) are not idempotent", len(bad)))
		}
		return nil
	},
}

var iniRestoreCmd = &cobra.Command{
	Use:   "restore [path]",
	Short: "Restore a file from its most recent backup",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, a, err := loadApp(cmd)
		if err != nil {
			fail(cmd, err)
			return nil
		}
		path := a.profile.INI.Path
		if len(args) == 1 {
			path = args[0]
		}

		backup := flagBackup
		if backup == "" {
			e, ok, err := a.journal.LatestPatch(path)
			if err != nil {
				fail(cmd, err)
				return nil
			}
			if !ok {
				fail(cmd, fmt.Errorf("no recorded backup for %s; pass --backup", path))
				return nil
			}
			backup = e.Patch.BackupPath
		}

		if err := inipatch.Restore(backup, path); err != nil {
			fail(cmd, err)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from %s\n", path, backup)
		return nil
	},
}

func init() {
	iniRestoreCmd.Flags().StringVar(&flagBackup, "backup", "", "Backup file to restore (default: newest recorded backup)")

	iniCmd.AddCommand(iniCheckCmd)
	iniCmd.AddCommand(iniRestoreCmd)
}
