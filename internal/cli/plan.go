package cli

import (
	"github.com/dshills/devboot/internal/output"
	"github.com/spf13/cobra"
)

var (
	flagFormat string
	flagOut    string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what setup would change without changing anything",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := output.GetWriter(flagFormat); err != nil {
			return err
		}

		ctx, a, err := loadApp(cmd)
		if err != nil {
			fail(cmd, err)
			return nil
		}

		plan, err := a.pipeline(nil, nil, nil).Plan(ctx, a.profile)
		if err != nil {
			fail(cmd, err)
			return nil
		}

		if err := output.WritePlan(&plan, flagFormat, flagOut, cmd.OutOrStdout()); err != nil {
			fail(cmd, err)
		}
		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&flagFormat, "format", "text", "Output format (text, json, markdown)")
	planCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
}
