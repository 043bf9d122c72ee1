package output

import (
	"fmt"
	"io"

	"github.com/dshills/devboot/internal/setup"
)

// MarkdownWriter outputs the plan as a markdown checklist.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, plan *setup.Plan) error {
	fmt.Fprintf(w, "## devboot setup plan\n\n")

	fmt.Fprintf(w, "| Step | Count |\n")
	fmt.Fprintf(w, "|------|-------|\n")
	fmt.Fprintf(w, "| Buckets to add | %d |\n", len(plan.Buckets))
	fmt.Fprintf(w, "| Tools to install | %d |\n", len(plan.Tools.ToInstall))
	fmt.Fprintf(w, "| Tools to update | %d |\n", len(plan.Tools.ToUpdate))
	fmt.Fprintf(w, "| Config lines to change | %d |\n\n", plan.INI.Changed)

	if plan.Empty() {
		fmt.Fprintln(w, "Nothing to do. :white_check_mark:")
		return nil
	}

	if len(plan.Buckets) > 0 {
		fmt.Fprintf(w, "### Buckets\n\n")
		for _, b := range plan.Buckets {
			fmt.Fprintf(w, "- [ ] `%s` (%s)\n", b.Name, b.URL)
		}
		fmt.Fprintln(w)
	}

	if len(plan.Tools.ToInstall)+len(plan.Tools.ToUpdate) > 0 {
		fmt.Fprintf(w, "### Tools\n\n")
		for _, name := range plan.Tools.ToInstall {
			fmt.Fprintf(w, "- [ ] install `%s`\n", name)
		}
		for _, name := range plan.Tools.ToUpdate {
			fmt.Fprintf(w, "- [ ] update `%s`\n", name)
		}
		fmt.Fprintln(w)
	}

	if plan.INI.Path != "" {
		fmt.Fprintf(w, "### Configuration\n\n")
		if plan.INI.Missing {
			fmt.Fprintf(w, "- [ ] `%s` (not found yet)\n\n", plan.INI.Path)
		} else {
			fmt.Fprintf(w, "- [ ] `%s`: %d of %d lines\n\n", plan.INI.Path, plan.INI.Changed, plan.INI.Total)
		}
	}

	if len(plan.Env) > 0 {
		fmt.Fprintf(w, "### Environment\n\n")
		for _, ev := range plan.Env {
			fmt.Fprintf(w, "- [ ] `%s=%s`\n", ev.Name, ev.Value)
		}
	}

	return nil
}
