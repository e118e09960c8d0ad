package output

import (
	"encoding/json"
	"io"

	"lakehouse-cost/internal/errors"
)

// JSONFormatter renders the full report as JSON. Amounts are decimal strings.
type JSONFormatter struct {
	Indent bool
}

// Format returns FormatJSON
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render encodes the report
func (f *JSONFormatter) Render(w io.Writer, report *Report) error {
	if err := report.validate(); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		return errors.Export("encode json report", err)
	}
	return nil
}
