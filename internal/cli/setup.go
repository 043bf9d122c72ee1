package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/devboot/internal/ctxlog"
	"github.com/dshills/devboot/internal/elevate"
	"github.com/spf13/cobra"
)

// relaunchArgs are passed to the elevated copy of devboot.
var relaunchArgs = func() []string { return absProfileArgs(os.Args[1:]) }

// absProfileArgs rewrites a relative --profile value to an absolute path so
// it still resolves once the elevated copy is running.
func absProfileArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out); i++ {
		switch {
		case out[i] == "--profile" && i+1 < len(out):
			i++
			out[i] = absPath(out[i])
		case strings.HasPrefix(out[i], "--profile="):
			out[i] = "--profile=" + absPath(strings.TrimPrefix(out[i], "--profile="))
		}
	}
	return out
}

func absPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install and update the toolchain, patch php.ini and set PHPRC",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := loadApp(cmd)
		if err != nil {
			fail(cmd, err)
			return nil
		}

		if a.cfg.Elevate {
			checker := elevate.New(a.runner)
			ok, err := checker.Elevated(ctx)
			if err != nil {
				fail(cmd, err)
				return nil
			}
			if !ok {
				ctxlog.FromContext(ctx).Info("not elevated, relaunching as administrator")
				exe, err := os.Executable()
				if err != nil {
					fail(cmd, fmt.Errorf("locating devboot executable: %w", err))
					return nil
				}
				err = checker.Relaunch(ctx, exe, relaunchArgs())
				if errors.Is(err, elevate.ErrDeclined) {
					fmt.Fprintln(cmd.OutOrStdout(), "Elevation declined; nothing was changed.")
					return nil
				}
				if err != nil {
					fail(cmd, err)
				}
				return nil
			}
		}

		out := cmd.OutOrStdout()
		if err := a.pipeline(out, out, cmd.ErrOrStderr()).Run(ctx, a.profile); err != nil {
			fail(cmd, err)
		}
		return nil
	},
}
