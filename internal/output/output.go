package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/devboot/internal/setup"
)

// Writer writes a plan in a specific format.
type Writer interface {
	Write(w io.Writer, plan *setup.Plan) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WritePlan writes the plan to outPath, or to stdout when outPath is empty.
func WritePlan(plan *setup.Plan, format, outPath string, stdout io.Writer) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	w := stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if w == nil {
		w = os.Stdout
	}

	return writer.Write(w, plan)
}
