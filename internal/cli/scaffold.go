package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/devboot/internal/journal"
	"github.com/dshills/devboot/internal/profile"
	"github.com/dshills/devboot/internal/scaffold"
	"github.com/dshills/devboot/internal/workdir"
	"github.com/spf13/cobra"
)

var flagOnly []string

// changer is the working-directory implementation used by scaffold.
var changer workdir.Changer = workdir.OS{}

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Generate the backend and frontend projects",
	Long: "Prompts for a target directory (blank for the current directory), then generates " +
		"every project in the profile in order: by default a Laravel backend and a Vue frontend.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := loadApp(cmd)
		if err != nil {
			fail(cmd, err)
			return nil
		}

		projects, err := selectProjects(a.profile, flagOnly)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		root, err := promptRoot(cmd.InOrStdin(), out)
		if err != nil {
			fail(cmd, err)
			return nil
		}

		s := scaffold.New(a.runner, scaffold.Options{
			Dir:     changer,
			Stdout:  out,
			Stderr:  cmd.ErrOrStderr(),
			Timeout: a.cfg.CommandTimeout(),
		})
		for _, pr := range projects {
			d := pr.Descriptor(root)
			fmt.Fprintf(out, "Generating %s in %s...\n", d.Name, d.TargetPath)
			if err := s.Run(ctx, d); err != nil {
				fail(cmd, err)
				return nil
			}
			if err := a.journal.Record(journal.Entry{Kind: journal.KindScaffold, Project: d.Name, Target: d.TargetPath}); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: journal write failed: %v\n", err)
			}
		}
		fmt.Fprintln(out, "Scaffolding complete.")
		return nil
	},
}

// promptRoot asks once for the target directory. Blank input means the
// current directory.
func promptRoot(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Project directory (blank for current): ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading directory: %w", err)
	}
	dir := strings.TrimSpace(line)
	if dir == "" {
		return os.Getwd()
	}
	return filepath.Abs(dir)
}

// selectProjects returns the profile's projects, restricted to names when
// given, in the order requested.
func selectProjects(p profile.Profile, names []string) ([]profile.Project, error) {
	if len(names) == 0 {
		return p.Projects, nil
	}
	var out []profile.Project
	for _, name := range names {
		pr, ok := p.Project(name)
		if !ok {
			return nil, fmt.Errorf("unknown project: %s", name)
		}
		out = append(out, pr)
	}
	return out, nil
}

func init() {
	scaffoldCmd.Flags().StringSliceVar(&flagOnly, "only", nil, "Generate only these projects (comma-separated, e.g. backend)")
}
