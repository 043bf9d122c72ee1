package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/dshills/devboot/internal/elevate"
	"github.com/dshills/devboot/internal/runner"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

const (
	ExitSuccess      = 0
	ExitRuntimeError = 1
	ExitUsageError   = 2
	ExitInterrupted  = 130
)

var rootCmd = &cobra.Command{
	Use:   "devboot",
	Short: "Bootstrap a Windows PHP/Node development machine",
	Long: "devboot installs and updates the developer toolchain through scoop, patches php.ini, " +
		"and scaffolds Laravel and Vue projects.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// fail reports err and records the matching exit code.
func fail(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	exitCode = exitCodeFor(err)
}

func exitCodeFor(err error) int {
	switch {
	case err == nil, errors.Is(err, elevate.ErrDeclined):
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	}
	if code, ok := runner.ExitCode(err); ok && code != 0 {
		return code
	}
	return ExitRuntimeError
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print devboot version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "devboot version %s\n", version)
	},
}

func init() {
	addGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(scaffoldCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(iniCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
