package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/devboot/internal/setup"
)

// JSONWriter outputs the full plan as JSON.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, plan *setup.Plan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
