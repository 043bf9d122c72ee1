package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/devboot/internal/setup"
)

// TextWriter outputs a human-readable plan.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, plan *setup.Plan) error {
	ew := &errWriter{w: w}

	ew.println("devboot setup plan")
	ew.println(strings.Repeat("─", 60))

	if plan.Empty() {
		ew.println("\nNothing to do. Environment is up to date.")
		return ew.err
	}

	section(ew, "Buckets to add", len(plan.Buckets))
	for _, b := range plan.Buckets {
		ew.printf("  + %s  %s\n", b.Name, b.URL)
	}

	section(ew, "Tools to install", len(plan.Tools.ToInstall))
	for _, name := range plan.Tools.ToInstall {
		ew.printf("  + %s\n", name)
	}

	section(ew, "Tools to update", len(plan.Tools.ToUpdate))
	for _, name := range plan.Tools.ToUpdate {
		ew.printf("  ~ %s\n", name)
	}

	if plan.INI.Path != "" {
		ew.printf("\nConfiguration file: %s\n", plan.INI.Path)
		switch {
		case plan.INI.Missing:
			ew.println("  not found yet (created by the php install)")
		default:
			ew.printf("  %d of %d lines would change\n", plan.INI.Changed, plan.INI.Total)
		}
	}

	section(ew, "Environment variables", len(plan.Env))
	for _, ev := range plan.Env {
		ew.printf("  %s=%s\n", ev.Name, ev.Value)
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("%d to install, %d to update, %d buckets\n",
		len(plan.Tools.ToInstall), len(plan.Tools.ToUpdate), len(plan.Buckets))

	return ew.err
}

func section(ew *errWriter, title string, n int) {
	if n == 0 {
		return
	}
	ew.printf("\n%s (%d)\n", title, n)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
